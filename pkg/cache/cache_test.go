package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

// in-memory Store used by the tests
type fakeStore struct {
	data map[string][]byte

	getErr    error
	setErr    error
	deleteErr error

	getCalls int
	setCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string][]byte{}}
}

func (s *fakeStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	raw, ok := s.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return raw, nil
}

func (s *fakeStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.data, key)
	return nil
}

func TestGetOrCreate_OriginCalledExactlyOnce(t *testing.T) {
	store := newFakeStore()
	aside := NewAside(store)
	ctx := context.Background()

	originCalls := 0
	origin := func(ctx context.Context) (string, error) {
		originCalls++
		return "payload", nil
	}

	first, err := GetOrCreate(ctx, aside, "bonus:1", time.Minute, origin)
	if err != nil {
		t.Fatalf("first GetOrCreate: %v", err)
	}

	second, err := GetOrCreate(ctx, aside, "bonus:1", time.Minute, origin)
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}

	if first != "payload" || second != "payload" {
		t.Fatalf("expected cached payload, got %q and %q", first, second)
	}
	if originCalls != 1 {
		t.Fatalf("expected origin called exactly once, got %d", originCalls)
	}
}

func TestGetOrCreate_StoreFailureFallsBackToOrigin(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	store.setErr = errors.New("connection refused")
	aside := NewAside(store)

	originCalls := 0
	value, err := GetOrCreate(context.Background(), aside, "bonuses:active", time.Minute, func(ctx context.Context) (int, error) {
		originCalls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("expected degraded call to succeed, got %v", err)
	}
	if value != 42 {
		t.Fatalf("expected origin value 42, got %d", value)
	}
	if originCalls != 1 {
		t.Fatalf("expected origin called once, got %d", originCalls)
	}
}

func TestGetOrCreate_PopulateFailureStillReturnsValue(t *testing.T) {
	store := newFakeStore()
	store.setErr = errors.New("oom")
	aside := NewAside(store)

	value, err := GetOrCreate(context.Background(), aside, "player:7:features", time.Minute, func(ctx context.Context) (string, error) {
		return "fresh", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "fresh" {
		t.Fatalf("expected origin value, got %q", value)
	}
}

func TestGetOrCreate_OriginErrorPropagates(t *testing.T) {
	aside := NewAside(newFakeStore())

	wantErr := errors.New("upstream down")
	_, err := GetOrCreate(context.Background(), aside, "bonus:9", time.Minute, func(ctx context.Context) (string, error) {
		return "", wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected origin error to propagate, got %v", err)
	}
}

func TestGetOrCreate_UnreadablePayloadFallsBack(t *testing.T) {
	store := newFakeStore()
	store.data["bonus:3"] = []byte("{not json")
	aside := NewAside(store)

	type payload struct {
		Name string `json:"name"`
	}

	value, err := GetOrCreate(context.Background(), aside, "bonus:3", time.Minute, func(ctx context.Context) (payload, error) {
		return payload{Name: "welcome"}, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value.Name != "welcome" {
		t.Fatalf("expected origin payload, got %+v", value)
	}
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	store := newFakeStore()
	aside := NewAside(store)
	ctx := context.Background()

	originCalls := 0
	origin := func(ctx context.Context) (string, error) {
		originCalls++
		return "v", nil
	}

	if _, err := GetOrCreate(ctx, aside, "player:1:bonusclaims", time.Minute, origin); err != nil {
		t.Fatal(err)
	}

	aside.Invalidate(ctx, "player:1:bonusclaims")

	if _, err := GetOrCreate(ctx, aside, "player:1:bonusclaims", time.Minute, origin); err != nil {
		t.Fatal(err)
	}
	if originCalls != 2 {
		t.Fatalf("expected origin re-invoked after invalidate, got %d calls", originCalls)
	}
}

func TestInvalidate_FailureIsSwallowed(t *testing.T) {
	store := newFakeStore()
	store.deleteErr = errors.New("gone")
	aside := NewAside(store)

	// must not panic or surface the error
	aside.Invalidate(context.Background(), "bonus:1", "bonuses:active")
}

func TestSet_RefreshesEntry(t *testing.T) {
	store := newFakeStore()
	aside := NewAside(store)
	ctx := context.Background()

	Set(ctx, aside, "recommendation:latest:4", "rec", time.Minute)

	value, err := GetOrCreate(ctx, aside, "recommendation:latest:4", time.Minute, func(ctx context.Context) (string, error) {
		t.Fatal("origin must not be called on a warm entry")
		return "", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if value != "rec" {
		t.Fatalf("expected refreshed value, got %q", value)
	}
}
