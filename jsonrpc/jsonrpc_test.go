package jsonrpc_test

import (
	"net/http"
	"testing"

	"github.com/habiliai/edudash/internal/mytesting"
	"github.com/habiliai/edudash/jsonrpc"
	"github.com/stretchr/testify/suite"
)

type Suite struct {
	mytesting.Suite

	handler http.Handler
}

func (s *Suite) SetupTest() {
	s.Suite.SetupTest()

	s.handler = jsonrpc.NewHandler(s.Container, jsonrpc.WithThread(), jsonrpc.WithAI(), jsonrpc.WithNotify())
}

func (s *Suite) TearDownTest() {
	s.handler = nil
	s.Suite.TearDownTest()
}

func TestJsonRpc(t *testing.T) {
	suite.Run(t, new(Suite))
}
