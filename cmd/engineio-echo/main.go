// Command engineio-echo is a minimal host for the engineio core: it wires
// a Dispatcher into a gorilla/mux router, loads its listen address and
// ping tunables through viper, and runs an echo session handler that
// bounces every inbound message back to its sender.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"

	"github.com/eio-core/server/engineio"
	"github.com/eio-core/server/engineio/config"
	pkglog "github.com/eio-core/server/pkg/log"
)

func main() {
	v := loadConfig()

	startupLog := slog.New(pkglog.NewPrefixSimpleHandler(os.Stdout, "[engineio-echo]"))
	startupLog.Info("starting", "addr", v.GetString("addr"))

	opts := config.ServerOptions{
		PingTimeout:  v.GetDuration("pingTimeout"),
		PingInterval: v.GetDuration("pingInterval"),
	}

	reg := engineio.NewRegistry()
	dispatcher := engineio.NewDispatcher(reg, opts, echoSession)

	router := mux.NewRouter()
	router.Handle("/engine.io/", dispatcher).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/healthz", healthz(reg)).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         v.GetString("addr"),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // long-polling GETs legitimately block
	}

	startupLog.Info("listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		startupLog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

// loadConfig reads engineio-echo.{yaml,json,...} from the working
// directory and the environment, falling back to legacy-compatible
// defaults when neither supplies a value.
func loadConfig() *viper.Viper {
	v := viper.New()
	v.SetConfigName("engineio-echo")
	v.AddConfigPath(".")
	v.SetEnvPrefix("ENGINEIO")
	v.AutomaticEnv()

	v.SetDefault("addr", ":3000")
	v.SetDefault("pingTimeout", 60*time.Second)
	v.SetDefault("pingInterval", 25*time.Second)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			panic(err)
		}
	}
	return v
}

// echoSession is the session handler passed to the Dispatcher: it reads
// every inbound message and writes it straight back, until the socket is
// torn down.
func echoSession(s *engineio.Socket) {
	ctx := context.Background()
	for {
		msg, err := s.DequeueMessage(ctx)
		if err != nil {
			return
		}
		s.EnqueueMessage(msg)
	}
}

// healthz reports the number of open sessions, exercising the Registry's
// public enumeration surface.
func healthz(reg *engineio.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("sessions: " + strconv.Itoa(reg.Count())))
	}
}
