package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/internal/db"
	"github.com/habiliai/edudash/internal/metrics"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/habiliai/edudash/jsonrpc"
	"github.com/habiliai/edudash/realtime"
	"github.com/jcooky/go-din"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Serve the thread store, realtime feed and assistant proxy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			c := din.NewContainer(ctx, din.EnvProd)
			conf := din.MustGetT[*config.ServerConfig](c)
			logger := din.MustGet[*mylog.Logger](c, mylog.Key)
			hub := din.MustGetT[*realtime.Hub](c)
			if _, err := din.Get[*gorm.DB](c, db.Key); err != nil {
				return err
			}

			server := &http.Server{
				Addr:    conf.Addr(),
				Handler: newServerHandler(c, conf, hub, logger),
				BaseContext: func(net.Listener) context.Context {
					return ctx
				},
			}

			go func() {
				<-ctx.Done()
				if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
					logger.Error("failed to shutdown server", mylog.Err(err))
				}
			}()

			logger.Info("server started", "addr", conf.Addr())
			defer logger.Info("server stopped")

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "failed to serve")
			}

			return nil
		},
	}
}

func newServerHandler(c *din.Container, conf *config.ServerConfig, hub *realtime.Hub, logger *slog.Logger) http.Handler {
	router := mux.NewRouter()
	router.Handle("/rpc", jsonrpc.NewHandler(c,
		jsonrpc.WithThread(),
		jsonrpc.WithAI(),
		jsonrpc.WithNotify(),
	)).Methods(http.MethodPost)
	router.Handle("/realtime", realtime.NewHandler(hub, logger.With("component", "realtime"))).Methods(http.MethodGet)
	router.HandleFunc("/realtime/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/schema+json")
		if err := json.NewEncoder(w).Encode(realtime.EventSchema()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}).Methods(http.MethodGet)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(strings.Split(conf.AllowedOrigins, ",")),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.PrintRecoveryStack(true),
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)

	return cors(recovery(router))
}
