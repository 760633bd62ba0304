package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dealgrid/dealgrid-backend/internal/app"
	apihttp "github.com/dealgrid/dealgrid-backend/internal/http"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Start(); err != nil {
		a.Log.Error("Failed to start app", "error", err)
		os.Exit(1)
	}

	srv := apihttp.NewServer(":"+a.Cfg.Port, a.Router)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		a.Log.Info("Server listening", "port", a.Cfg.Port)
		return srv.Run()
	})

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sig := <-sigCh:
			a.Log.Info("Shutting down", "signal", sig.String())
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.Log.Error("Server exited", "error", err)
	}
}
