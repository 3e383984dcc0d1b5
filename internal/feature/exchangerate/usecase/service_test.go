package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockRateSource simulates the upstream rate provider.
type mockRateSource struct {
	FetchRateFunc func(ctx context.Context) (float64, error)
	calls         int
}

func (m *mockRateSource) FetchRate(ctx context.Context) (float64, error) {
	m.calls++
	if m.FetchRateFunc != nil {
		return m.FetchRateFunc(ctx)
	}
	return 1350, nil
}

// fakeClock is an adjustable time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(source RateSource, clock *fakeClock) *Service {
	return NewService(source, 30*time.Minute, clock.now)
}

func TestServiceDefaultRate(t *testing.T) {
	s := newTestService(&mockRateSource{}, &fakeClock{t: time.Now()})
	if s.Rate() != 1300 {
		t.Errorf("Rate() = %v, want default 1300", s.Rate())
	}
}

func TestServiceRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("fetch updates rate and timestamp", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		s := newTestService(&mockRateSource{}, clock)

		rate, err := s.Refresh(ctx, false)
		if err != nil {
			t.Fatalf("Refresh: %v", err)
		}
		if rate != 1350 {
			t.Errorf("rate = %v, want 1350", rate)
		}

		snap := s.Get()
		if snap.LastUpdated == nil || !snap.LastUpdated.Equal(clock.t) {
			t.Errorf("LastUpdated = %v, want %v", snap.LastUpdated, clock.t)
		}
	})

	t.Run("fresh rate skips the provider", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		source := &mockRateSource{}
		s := newTestService(source, clock)

		s.Refresh(ctx, false)
		clock.advance(10 * time.Minute)
		s.Refresh(ctx, false)

		if source.calls != 1 {
			t.Errorf("provider called %d times, want 1", source.calls)
		}
	})

	t.Run("concurrent refreshes collapse to one fetch", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		fetchStarted := make(chan struct{})
		release := make(chan struct{})
		source := &mockRateSource{
			FetchRateFunc: func(ctx context.Context) (float64, error) {
				close(fetchStarted)
				<-release
				return 1350, nil
			},
		}
		s := newTestService(source, clock)

		done := make(chan float64, 1)
		go func() {
			rate, _ := s.Refresh(ctx, false)
			done <- rate
		}()
		<-fetchStarted

		// While the first fetch is blocked, a second caller gets the current
		// rate back immediately instead of a second provider call.
		rate, err := s.Refresh(ctx, false)
		if err != nil {
			t.Fatalf("collapsed Refresh: %v", err)
		}
		if rate != 1300 {
			t.Errorf("collapsed refresh = %v, want current 1300", rate)
		}

		close(release)
		if got := <-done; got != 1350 {
			t.Errorf("in-flight refresh = %v, want 1350", got)
		}
		if source.calls != 1 {
			t.Errorf("provider called %d times, want 1", source.calls)
		}
	})

	t.Run("stale rate refetches", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		source := &mockRateSource{}
		s := newTestService(source, clock)

		s.Refresh(ctx, false)
		clock.advance(31 * time.Minute)
		s.Refresh(ctx, false)

		if source.calls != 2 {
			t.Errorf("provider called %d times, want 2", source.calls)
		}
	})

	t.Run("failed fetch keeps cached rate", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		source := &mockRateSource{}
		s := newTestService(source, clock)

		s.Refresh(ctx, false)

		source.FetchRateFunc = func(ctx context.Context) (float64, error) {
			return 0, errors.New("timeout")
		}
		clock.advance(31 * time.Minute)
		rate, err := s.Refresh(ctx, false)

		if err == nil {
			t.Error("expected fetch error")
		}
		if rate != 1350 {
			t.Errorf("rate = %v, want previously cached 1350", rate)
		}
	})

	t.Run("failed fetch without cache keeps default", func(t *testing.T) {
		source := &mockRateSource{
			FetchRateFunc: func(ctx context.Context) (float64, error) {
				return 0, errors.New("timeout")
			},
		}
		s := newTestService(source, &fakeClock{t: time.Now()})

		rate, _ := s.Refresh(ctx, false)
		if rate != 1300 {
			t.Errorf("rate = %v, want default 1300", rate)
		}
	})

	t.Run("implausible rate rejected", func(t *testing.T) {
		source := &mockRateSource{
			FetchRateFunc: func(ctx context.Context) (float64, error) {
				return 5, nil
			},
		}
		s := newTestService(source, &fakeClock{t: time.Now()})

		rate, err := s.Refresh(ctx, false)
		if !errors.Is(err, ErrRateOutOfRange) {
			t.Errorf("expected ErrRateOutOfRange, got %v", err)
		}
		if rate != 1300 {
			t.Errorf("rate = %v, want default 1300", rate)
		}
	})
}

func TestServiceManualRate(t *testing.T) {
	ctx := context.Background()

	t.Run("manual pin blocks automatic refresh", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		source := &mockRateSource{}
		s := newTestService(source, clock)

		if err := s.SetManual(1400); err != nil {
			t.Fatalf("SetManual: %v", err)
		}

		clock.advance(2 * time.Hour)
		rate, _ := s.Refresh(ctx, false)

		if source.calls != 0 {
			t.Errorf("provider called %d times, want 0 while pinned", source.calls)
		}
		if rate != 1400 {
			t.Errorf("rate = %v, want pinned 1400", rate)
		}
		if !s.Get().IsManualRate {
			t.Error("IsManualRate should stay true")
		}
	})

	t.Run("manual flag survives a failed automatic attempt", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		s := newTestService(&mockRateSource{
			FetchRateFunc: func(ctx context.Context) (float64, error) {
				return 0, errors.New("timeout")
			},
		}, clock)

		s.SetManual(1400)
		clock.advance(2 * time.Hour)
		s.Refresh(ctx, false)

		snap := s.Get()
		if !snap.IsManualRate || snap.Rate != 1400 {
			t.Errorf("manual state disturbed by failed refresh: %+v", snap)
		}
	})

	t.Run("forced refresh releases the pin", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		s := newTestService(&mockRateSource{}, clock)

		s.SetManual(1400)
		rate, err := s.Refresh(ctx, true)
		if err != nil {
			t.Fatalf("Refresh: %v", err)
		}
		if rate != 1350 {
			t.Errorf("rate = %v, want fetched 1350", rate)
		}
		if s.Get().IsManualRate {
			t.Error("forced refresh should clear the manual flag")
		}
	})

	t.Run("out-of-band manual rate rejected", func(t *testing.T) {
		s := newTestService(&mockRateSource{}, &fakeClock{t: time.Now()})
		if err := s.SetManual(2500); !errors.Is(err, ErrRateOutOfRange) {
			t.Errorf("expected ErrRateOutOfRange, got %v", err)
		}
		if err := s.SetManual(500); !errors.Is(err, ErrRateOutOfRange) {
			t.Errorf("expected ErrRateOutOfRange, got %v", err)
		}
	})

	t.Run("clear manual refetches", func(t *testing.T) {
		clock := &fakeClock{t: time.Now()}
		source := &mockRateSource{}
		s := newTestService(source, clock)

		s.SetManual(1400)
		rate, err := s.ClearManual(ctx)
		if err != nil {
			t.Fatalf("ClearManual: %v", err)
		}
		if rate != 1350 || s.Get().IsManualRate {
			t.Errorf("expected live rate after clearing pin, got %v (manual=%v)", rate, s.Get().IsManualRate)
		}
	})
}
