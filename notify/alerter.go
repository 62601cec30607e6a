package notify

import (
	"context"
	"log/slog"

	"github.com/gen2brain/beeep"
	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/errors"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/habiliai/edudash/internal/stringutils"
	"github.com/jcooky/go-din"
)

type (
	// Alerter raises a local alert for an incoming message.
	Alerter interface {
		Alert(ctx context.Context, title, body string) error
	}

	BeepAlerter struct {
		logger *slog.Logger
	}

	NoopAlerter struct{}
)

var (
	_ Alerter = (*BeepAlerter)(nil)
	_ Alerter = NoopAlerter{}
)

func NewBeepAlerter(logger *slog.Logger) *BeepAlerter {
	return &BeepAlerter{logger: logger}
}

func (a *BeepAlerter) Alert(_ context.Context, title, body string) error {
	if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
		a.logger.Debug("failed to beep", mylog.Err(err))
	}
	return errors.Wrapf(beeep.Notify(title, stringutils.Ellipsis(body, 100), ""), "failed to notify")
}

func (NoopAlerter) Alert(context.Context, string, string) error {
	return nil
}

func init() {
	din.RegisterT(func(c *din.Container) (Alerter, error) {
		conf := din.MustGetT[*config.ClientConfig](c)
		if !conf.Sound {
			return NoopAlerter{}, nil
		}

		logger := din.MustGet[*mylog.Logger](c, mylog.Key)
		return NewBeepAlerter(logger), nil
	})
}
