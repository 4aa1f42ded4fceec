package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"enumdb/internal/core/model"
)

func makeTargets(n int) []model.Target {
	targets := make([]model.Target, n)
	for i := range targets {
		targets[i] = model.Target{Host: fmt.Sprintf("10.0.0.%d", i+1), Port: 3306, DBType: model.DBTypeMySQL}
	}
	return targets
}

func TestScheduler_BoundNeverExceeded(t *testing.T) {
	tests := []struct {
		name       string
		maxThreads int
		targets    int
	}{
		{"bound 3", 3, 12},
		{"bound 1", 1, 4},
		{"more threads than targets", 10, 3},
		{"zero treated as one", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(tt.maxThreads)
			limit := int64(tt.maxThreads)
			if limit < 1 {
				limit = 1
			}

			var running, maxSeen int64
			unit := func(ctx context.Context, target model.Target) model.TrialResult {
				n := atomic.AddInt64(&running, 1)
				for {
					old := atomic.LoadInt64(&maxSeen)
					if n <= old || atomic.CompareAndSwapInt64(&maxSeen, old, n) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt64(&running, -1)
				return model.TrialResult{Target: target, Attempts: 1}
			}

			targets := makeTargets(tt.targets)
			results, err := s.Run(context.Background(), targets, unit)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if len(results) != tt.targets {
				t.Fatalf("Run() returned %d results, want %d", len(results), tt.targets)
			}
			for i, r := range results {
				if r.Target != targets[i] {
					t.Errorf("results[%d].Target = %v, want %v", i, r.Target, targets[i])
				}
			}
			if maxSeen > limit {
				t.Errorf("concurrent units = %d, exceeds bound %d", maxSeen, limit)
			}
			if int64(s.Peak()) > limit {
				t.Errorf("limiter peak = %d, exceeds bound %d", s.Peak(), limit)
			}
			if s.Active() != 0 {
				t.Errorf("Active() = %d after Run, want 0", s.Active())
			}
		})
	}
}

func TestScheduler_CancelReturnsPromptly(t *testing.T) {
	s := NewScheduler(2)
	release := make(chan struct{})
	defer close(release)

	var started int64
	unit := func(ctx context.Context, target model.Target) model.TrialResult {
		atomic.AddInt64(&started, 1)
		<-release // 模拟卡住的目标，不理会 ctx
		return model.TrialResult{Target: target}
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	begin := time.Now()
	_, err := s.Run(ctx, makeTargets(5), unit)
	elapsed := time.Since(begin)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if elapsed > time.Second {
		t.Errorf("Run() took %v after cancel, want prompt return", elapsed)
	}
	if n := atomic.LoadInt64(&started); n != 2 {
		t.Errorf("started units = %d, want 2", n)
	}
}

func TestScheduler_NoTargets(t *testing.T) {
	results, err := NewScheduler(3).Run(context.Background(), nil, func(context.Context, model.Target) model.TrialResult {
		t.Fatal("unit must not be called")
		return model.TrialResult{}
	})
	if err != nil || len(results) != 0 {
		t.Errorf("Run() = %v, %v; want empty, nil", results, err)
	}
}
