package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/NexxxT-x/TamagotchPy/internal/config"
)

type mockDecayRepo struct {
	mu    sync.Mutex
	calls int
	fail  int
	last  [2]int
}

func (m *mockDecayRepo) DecayNeeds(ctx context.Context, hunger, happiness int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last = [2]int{hunger, happiness}
	if m.calls <= m.fail {
		return 0, errors.New("database is locked")
	}
	return 3, nil
}

func (m *mockDecayRepo) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func TestRunDecay(t *testing.T) {
	repo := &mockDecayRepo{}
	n, err := RunDecay(context.Background(), repo, config.DecayConfig{Interval: time.Hour, Hunger: 5, Happiness: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 || repo.last != [2]int{5, 3} {
		t.Fatalf("unexpected decay: n=%d last=%v", n, repo.last)
	}
}

func TestRunDecayLoop_ContinuesAfterFailure(t *testing.T) {
	repo := &mockDecayRepo{fail: 1}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunDecayLoop(ctx, repo, config.DecayConfig{Interval: 5 * time.Millisecond, Hunger: 1, Happiness: 1})
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for repo.callCount() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("loop stopped after %d passes", repo.callCount())
		}
		time.Sleep(2 * time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("loop did not stop on cancel")
	}
}
