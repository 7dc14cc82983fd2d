package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", config.MaxRetries)
	}
	if config.InitialInterval != time.Second {
		t.Errorf("InitialInterval = %v, want 1s", config.InitialInterval)
	}
	if config.MaxInterval != 30*time.Second {
		t.Errorf("MaxInterval = %v, want 30s", config.MaxInterval)
	}
	if config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0", config.Multiplier)
	}
}

func TestNew_WithNilConfig(t *testing.T) {
	r := New(nil)

	if r.config.MaxRetries != 5 {
		t.Errorf("Expected default config, got MaxRetries = %d", r.config.MaxRetries)
	}
}

func TestNew_FillsZeroValues(t *testing.T) {
	r := New(&Config{MaxRetries: 3})

	if r.config.InitialInterval != time.Second {
		t.Errorf("InitialInterval = %v, want 1s", r.config.InitialInterval)
	}
	if r.config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0", r.config.Multiplier)
	}
	if r.config.JitterFactor != 0 {
		t.Errorf("JitterFactor = %v, want 0", r.config.JitterFactor)
	}
}

func TestRetrier_Do_Success(t *testing.T) {
	r := New(&Config{MaxRetries: 3, InitialInterval: time.Millisecond})

	calls := 0
	result := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if calls != 1 {
		t.Errorf("Operation ran %d times, want 1", calls)
	}
}

func TestRetrier_Do_SuccessAfterRetries(t *testing.T) {
	r := New(&Config{MaxRetries: 5, InitialInterval: time.Millisecond})

	calls := 0
	result := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", result.Attempts)
	}
}

func TestRetrier_Do_MaxRetriesExceeded(t *testing.T) {
	r := New(&Config{MaxRetries: 2, InitialInterval: time.Millisecond})

	opErr := errors.New("still broken")
	calls := 0
	result := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return opErr
	})

	if !errors.Is(result.Err, ErrMaxRetriesExceeded) {
		t.Errorf("Err = %v, want ErrMaxRetriesExceeded", result.Err)
	}
	if !errors.Is(result.LastError, opErr) {
		t.Errorf("LastError = %v, want %v", result.LastError, opErr)
	}
	// Initial attempt plus two retries
	if calls != 3 {
		t.Errorf("Operation ran %d times, want 3", calls)
	}
}

func TestRetrier_Do_PermanentError(t *testing.T) {
	r := New(&Config{MaxRetries: 5, InitialInterval: time.Millisecond})

	opErr := errors.New("bad request")
	calls := 0
	result := r.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(opErr)
	})

	if !errors.Is(result.Err, opErr) {
		t.Errorf("Err = %v, want %v", result.Err, opErr)
	}
	if calls != 1 {
		t.Errorf("Permanent error retried: operation ran %d times", calls)
	}
}

func TestRetrier_Do_ContextCanceled(t *testing.T) {
	r := New(&Config{MaxRetries: 10, InitialInterval: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	result := r.Do(ctx, func(ctx context.Context) error {
		cancel()
		return errors.New("transient")
	})

	if !errors.Is(result.Err, ErrContextCanceled) {
		t.Errorf("Err = %v, want ErrContextCanceled", result.Err)
	}
}

func TestPermanent_NilError(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
}

func TestPermanentError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	wrapped := Permanent(inner)

	if !errors.Is(wrapped, inner) {
		t.Error("errors.Is should see through PermanentError")
	}
	if wrapped.Error() != "inner" {
		t.Errorf("Error() = %s, want inner", wrapped.Error())
	}
}

func TestInterval_ExponentialBackoff(t *testing.T) {
	r := New(&Config{
		MaxRetries:      5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Second,
		Multiplier:      2.0,
		JitterFactor:    0,
	})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200 * time.Millisecond},
		{2, 400 * time.Millisecond},
		{3, 800 * time.Millisecond},
		{4, time.Second}, // capped
	}

	for _, tt := range tests {
		if got := r.interval(tt.attempt); got != tt.want {
			t.Errorf("interval(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestInterval_WithJitter(t *testing.T) {
	r := New(&Config{
		MaxRetries:      5,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     time.Minute,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	})

	for i := 0; i < 50; i++ {
		got := r.interval(0)
		if got < 90*time.Millisecond || got > 110*time.Millisecond {
			t.Fatalf("interval(0) = %v, want within +/-10%% of 100ms", got)
		}
	}
}

func TestDo_ConvenienceFunction(t *testing.T) {
	calls := 0
	result := Do(context.Background(), &Config{MaxRetries: 1, InitialInterval: time.Millisecond}, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	})

	if result.Err != nil {
		t.Errorf("Err = %v, want nil", result.Err)
	}
	if result.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Attempts)
	}
}

func TestResult_TotalDuration(t *testing.T) {
	r := New(&Config{MaxRetries: 2, InitialInterval: 10 * time.Millisecond, JitterFactor: 0})

	result := r.Do(context.Background(), func(ctx context.Context) error {
		return errors.New("transient")
	})

	// Two waits of roughly 10ms and 20ms
	if result.TotalDuration < 25*time.Millisecond {
		t.Errorf("TotalDuration = %v, want at least 25ms", result.TotalDuration)
	}
}
