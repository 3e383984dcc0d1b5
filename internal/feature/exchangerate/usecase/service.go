// Package usecase implements the cached USD→KRW exchange-rate service.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultRate is used until the first successful fetch (1 USD = 1300 KRW).
const DefaultRate = 1300

// Rates outside this band are treated as provider glitches and rejected.
const (
	MinPlausibleRate = 800
	MaxPlausibleRate = 2000
)

// ErrRateOutOfRange is returned when a manual rate falls outside the
// plausible band.
var ErrRateOutOfRange = errors.New("exchange rate out of plausible range")

// RateSource fetches the live USD→KRW rate from an external provider.
type RateSource interface {
	FetchRate(ctx context.Context) (float64, error)
}

// Snapshot is the externally visible exchange-rate state.
type Snapshot struct {
	Rate         float64    `json:"rate"`
	LastUpdated  *time.Time `json:"lastUpdated"`
	IsManualRate bool       `json:"isManualRate"`
}

// Service owns the exchange-rate state: the current rate, its freshness, and
// whether the user pinned it manually. A manually set rate is never
// overwritten by automatic refreshes; only a forced refresh clears the pin.
//
// The clock is injected so freshness logic is testable with a fake clock.
type Service struct {
	mu       sync.Mutex
	source   RateSource
	window   time.Duration
	now      func() time.Time
	inFlight bool

	rate        float64
	lastUpdated *time.Time
	isManual    bool
}

// NewService creates a Service with the given provider and freshness window.
// now may be nil, in which case time.Now is used.
func NewService(source RateSource, window time.Duration, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = 30 * time.Minute
	}
	return &Service{
		source: source,
		window: window,
		now:    now,
		rate:   DefaultRate,
	}
}

// Rate returns the current USD→KRW rate. It never fails; callers always get
// the last good (or default) value.
func (s *Service) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

// Get returns the full exchange-rate snapshot.
func (s *Service) Get() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Rate: s.rate, LastUpdated: s.lastUpdated, IsManualRate: s.isManual}
}

// Refresh fetches a fresh rate from the provider.
//
// Without force, the refresh is skipped while a manual rate is pinned or the
// cached rate is still inside the freshness window. Concurrent refreshes
// collapse: while one fetch is in flight, other callers return the current
// rate immediately. A failed fetch keeps the previous rate and leaves the
// manual flag untouched.
func (s *Service) Refresh(ctx context.Context, force bool) (float64, error) {
	s.mu.Lock()
	if !force {
		if s.isManual {
			s.mu.Unlock()
			return s.rate, nil
		}
		if s.lastUpdated != nil && s.now().Sub(*s.lastUpdated) < s.window {
			s.mu.Unlock()
			return s.rate, nil
		}
	}
	if s.inFlight {
		rate := s.rate
		s.mu.Unlock()
		return rate, nil
	}
	s.inFlight = true
	s.mu.Unlock()

	rate, err := s.source.FetchRate(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inFlight = false

	if err != nil {
		slog.Warn("exchange rate refresh failed, keeping last known rate",
			"error", err, "rate", s.rate)
		return s.rate, err
	}
	if rate < MinPlausibleRate || rate > MaxPlausibleRate {
		slog.Warn("exchange rate rejected as implausible", "rate", rate)
		return s.rate, ErrRateOutOfRange
	}

	now := s.now()
	s.rate = rate
	s.lastUpdated = &now
	if force {
		// A forced refresh is an explicit request for the live rate; it
		// releases the manual pin.
		s.isManual = false
	}
	slog.Info("exchange rate updated", "rate", rate)
	return rate, nil
}

// SetManual pins the rate to a user-supplied value inside the plausible band.
// Automatic refreshes will not overwrite it.
func (s *Service) SetManual(rate float64) error {
	if rate < MinPlausibleRate || rate > MaxPlausibleRate {
		return ErrRateOutOfRange
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.rate = rate
	s.lastUpdated = &now
	s.isManual = true
	return nil
}

// ClearManual releases the manual pin and refreshes from the provider.
func (s *Service) ClearManual(ctx context.Context) (float64, error) {
	s.mu.Lock()
	s.isManual = false
	s.mu.Unlock()
	return s.Refresh(ctx, true)
}
