package jsonrpc

import (
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/jcooky/go-din"
)

type ServerOption = func(c *din.Container, server *rpc.Server)

// NewHandler serves the registered JSON-RPC services. Panic recovery and
// CORS are left to the router that mounts it.
func NewHandler(c *din.Container, opts ...ServerOption) http.Handler {
	return newRPCServer(c, opts...)
}
