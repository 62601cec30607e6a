package mytesting

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jcooky/go-din"
	"github.com/stretchr/testify/suite"
)

// Suite is a testify suite that is also the context.Context of the running
// test. Every test gets a fresh context and container; goroutines left over
// from an earlier test read the context through an atomic pointer.
type Suite struct {
	suite.Suite

	Container *din.Container

	current atomic.Pointer[testContext]
}

type testContext struct {
	context.Context
	cancel context.CancelFunc
}

var _ context.Context = (*Suite)(nil)

func (s *Suite) SetupTest() {
	ctx, cancel := context.WithCancel(context.Background())
	s.current.Store(&testContext{Context: ctx, cancel: cancel})
	s.Container = din.NewContainer(ctx, din.EnvTest)
}

func (s *Suite) TearDownTest() {
	if c := s.current.Load(); c != nil {
		c.cancel()
	}
}

func (s *Suite) ctx() context.Context {
	if c := s.current.Load(); c != nil {
		return c.Context
	}
	return context.Background()
}

func (s *Suite) Deadline() (time.Time, bool) { return s.ctx().Deadline() }
func (s *Suite) Done() <-chan struct{}       { return s.ctx().Done() }
func (s *Suite) Err() error                  { return s.ctx().Err() }
func (s *Suite) Value(key any) any           { return s.ctx().Value(key) }
