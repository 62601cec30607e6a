package notifytest

import (
	"context"

	"github.com/habiliai/edudash/notify"
	"github.com/stretchr/testify/mock"
)

type Dispatcher struct {
	mock.Mock
}

func (d *Dispatcher) Dispatch(ctx context.Context, push notify.Push) error {
	return d.Called(ctx, push).Error(0)
}

type Alerter struct {
	mock.Mock
}

func (a *Alerter) Alert(ctx context.Context, title, body string) error {
	return a.Called(ctx, title, body).Error(0)
}

var (
	_ notify.Dispatcher = (*Dispatcher)(nil)
	_ notify.Alerter    = (*Alerter)(nil)
)
