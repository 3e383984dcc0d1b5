package usecase

import (
	"context"
	"log/slog"
	"time"
)

// Updater refreshes the exchange rate in the background on a fixed interval.
type Updater struct {
	service  *Service
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewUpdater creates an Updater that calls service.Refresh every interval.
func NewUpdater(service *Service, interval time.Duration) *Updater {
	return &Updater{
		service:  service,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the refresh loop. It performs one refresh immediately so the
// default rate is replaced as soon as the provider is reachable.
func (u *Updater) Start() {
	go func() {
		defer close(u.done)

		u.refreshOnce()

		ticker := time.NewTicker(u.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				u.refreshOnce()
			case <-u.stop:
				return
			}
		}
	}()
	slog.Info("exchange rate updater started", "interval", u.interval)
}

// Stop terminates the refresh loop and waits for it to finish.
func (u *Updater) Stop() {
	close(u.stop)
	<-u.done
	slog.Info("exchange rate updater stopped")
}

func (u *Updater) refreshOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := u.service.Refresh(ctx, false); err != nil {
		slog.Warn("background exchange rate refresh failed", "error", err)
	}
}
