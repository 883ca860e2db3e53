package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		DelayFactor:  2.0,
	}
}

func TestRunRetriesUntilSuccess(t *testing.T) {
	runner := NewRunner(fastPolicy())

	attempts := 0
	err := runner.Run(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, func(error) Verdict { return Verdict{Retry: true, CountAsFailure: true} })

	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRunStopsOnNonRetryableError(t *testing.T) {
	runner := NewRunner(fastPolicy())

	attempts := 0
	permanent := errors.New("bad request")
	err := runner.Run(context.Background(), "op", func(context.Context) error {
		attempts++
		return permanent
	}, func(error) Verdict { return Verdict{Retry: false, CountAsFailure: false} })

	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected single attempt, got %d", attempts)
	}
}

func TestRunExhaustsAttempts(t *testing.T) {
	runner := NewRunner(fastPolicy())

	attempts := 0
	err := runner.Run(context.Background(), "op", func(context.Context) error {
		attempts++
		return errors.New("still failing")
	}, func(error) Verdict { return Verdict{Retry: true, CountAsFailure: true} })

	if err == nil {
		t.Fatalf("expected error after exhausted retries")
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRunRespectsCanceledContext(t *testing.T) {
	runner := NewRunner(fastPolicy())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := runner.Run(ctx, "op", func(context.Context) error {
		attempts++
		return nil
	}, nil)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if attempts != 0 {
		t.Fatalf("expected no attempts on canceled context, got %d", attempts)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	policy := fastPolicy()
	policy.BreakerEnabled = true
	policy.BreakerMinRequests = 2
	policy.BreakerFailureRatio = 0.5
	policy.BreakerCooldown = time.Minute
	policy.BreakerProbeCalls = 1
	runner := NewRunner(policy)

	classify := func(error) Verdict { return Verdict{Retry: false, CountAsFailure: true} }
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_ = runner.Run(context.Background(), "flaky", func(context.Context) error { return boom }, classify)
	}

	err := runner.Run(context.Background(), "flaky", func(context.Context) error { return nil }, classify)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
}
