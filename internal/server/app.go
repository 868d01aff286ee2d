package server

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// finished battles stay listed this long
const finishedBattleTTL = 10 * time.Minute

// StartApp serves the battle API on addr until ctx is done.
func StartApp(ctx context.Context, addr string, deps Dependencies) error {
	hub := NewHub(deps)
	log := hub.deps.Log

	srv := &http.Server{
		Addr:              addr,
		Handler:           NewMux(hub, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// periodic cleanup of finished battles
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := hub.CleanupFinished(finishedBattleTTL); n > 0 {
					log.Debug("removed finished battles", "count", n)
				}
			}
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting battle server", "addr", addr, "hz", hub.deps.Hz)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		hub.Shutdown()
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	hub.Shutdown()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
