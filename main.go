package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Was1f/UrbanFix-sub001/api"
	"github.com/Was1f/UrbanFix-sub001/api/handlers"
	"github.com/Was1f/UrbanFix-sub001/config"
)

// requestTimeout bounds a whole request, above the per-query timeout
const requestTimeout = 30 * time.Second

func main() {
	a := handlers.App{}
	a.Config = *config.New()
	defer func() { _ = zap.L().Sync() }()

	if err := a.Initialize(); err != nil { // initialize database and router
		zap.S().With(err).Fatal("failed to initialize")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", a.Config.Port),
		Handler:           api.TimeoutMiddleware(requestTimeout)(a.Router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.S().Infow("urbanfix is up and running",
			"port", a.Config.Port,
			"url", a.Config.BaseURL,
			"driver", a.Config.DBDriver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().With(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	zap.S().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.S().With(err).Error("failed to shut down server")
	}
	a.Shutdown(ctx)
}
