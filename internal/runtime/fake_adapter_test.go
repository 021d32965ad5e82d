package runtime

import (
	"context"
	"sync"
)

type fakeAdapter struct {
	mu      sync.Mutex
	actions []string
	stopped bool
}

func (f *fakeAdapter) Connect(ctx context.Context, opts map[string]any) (bool, error) {
	return true, nil
}

func (f *fakeAdapter) RunAction(ctx context.Context, name string, params map[string]any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, name)
	return true, nil
}

func (f *fakeAdapter) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeAdapter) GetSensorData(ctx context.Context) (map[string]any, error) {
	return map[string]any{"distance": 1.5}, nil
}

func (f *fakeAdapter) Health(ctx context.Context) (map[string]any, error) {
	return map[string]any{"ok": true}, nil
}

func (f *fakeAdapter) seenActions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.actions))
	copy(out, f.actions)
	return out
}
