package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeDecayer struct {
	calls int
	err   error
}

func (f *fakeDecayer) Decay(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("job context has no deadline")
	}
	f.calls++
	return f.err
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{"descriptor", "@hourly", false},
		{"five fields", "*/15 * * * *", false},
		{"every", "@every 1m", false},
		{"garbage", "sometimes", true},
		{"six fields", "0 0 * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler()
			err := s.Register(TrendDecayTask(&fakeDecayer{}, tt.schedule))
			if (err != nil) != tt.wantErr {
				t.Errorf("Register(%q) err = %v, wantErr %v", tt.schedule, err, tt.wantErr)
			}
		})
	}
}

func TestRunTask(t *testing.T) {
	d := &fakeDecayer{}
	runTask(TrendDecayTask(d, "@hourly"))
	if d.calls != 1 {
		t.Errorf("calls = %d, want 1", d.calls)
	}

	// Failures are logged, not propagated.
	failing := &fakeDecayer{err: errors.New("redis down")}
	runTask(TrendDecayTask(failing, "@hourly"))
	if failing.calls != 1 {
		t.Errorf("calls = %d, want 1", failing.calls)
	}
}

func TestSchedulerStop(t *testing.T) {
	s := NewScheduler()
	if err := s.Register(TrendDecayTask(&fakeDecayer{}, "@hourly")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	s.Start()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Stop(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
