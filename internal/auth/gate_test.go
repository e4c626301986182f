package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeRoleRepo struct {
	admins map[string]bool
	err    error
	calls  int
}

func (f *fakeRoleRepo) HasRole(_ context.Context, callerID, role string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.admins[callerID] && role == "admin", nil
}

type fakeRoleCache struct {
	flags map[string]bool
	err   error
}

func newFakeRoleCache() *fakeRoleCache {
	return &fakeRoleCache{flags: make(map[string]bool)}
}

func (f *fakeRoleCache) GetAdminFlag(_ context.Context, callerID string) (bool, bool, error) {
	if f.err != nil {
		return false, false, f.err
	}
	v, ok := f.flags[callerID]
	return v, ok, nil
}

func (f *fakeRoleCache) SetAdminFlag(_ context.Context, callerID string, admin bool, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.flags[callerID] = admin
	return nil
}

func TestIsAdminWithRole(t *testing.T) {
	repo := &fakeRoleRepo{admins: map[string]bool{"u1": true}}
	gate := NewGate(repo, nil, time.Minute)

	require.True(t, gate.IsAdmin(context.Background(), "u1"))
}

func TestIsAdminWithoutRole(t *testing.T) {
	repo := &fakeRoleRepo{admins: map[string]bool{}}
	gate := NewGate(repo, nil, time.Minute)

	require.False(t, gate.IsAdmin(context.Background(), "u1"), "absent role row means not admin, not an error")
}

func TestIsAdminFailsClosedOnLookupError(t *testing.T) {
	repo := &fakeRoleRepo{err: errors.New("store down")}
	gate := NewGate(repo, nil, time.Minute)

	require.False(t, gate.IsAdmin(context.Background(), "u1"), "a failed lookup must deny, never grant")
}

func TestIsAdminEmptyCaller(t *testing.T) {
	repo := &fakeRoleRepo{admins: map[string]bool{"": true}}
	gate := NewGate(repo, nil, time.Minute)

	require.False(t, gate.IsAdmin(context.Background(), ""))
	require.Zero(t, repo.calls, "empty caller must not reach the store")
}

func TestIsAdminUsesCache(t *testing.T) {
	repo := &fakeRoleRepo{admins: map[string]bool{"u1": true}}
	cache := newFakeRoleCache()
	gate := NewGate(repo, cache, time.Minute)

	require.True(t, gate.IsAdmin(context.Background(), "u1"))
	require.True(t, gate.IsAdmin(context.Background(), "u1"))

	require.Equal(t, 1, repo.calls, "second check must be served from the cache")
}

func TestIsAdminCacheErrorFallsThrough(t *testing.T) {
	repo := &fakeRoleRepo{admins: map[string]bool{"u1": true}}
	cache := newFakeRoleCache()
	cache.err = errors.New("redis down")
	gate := NewGate(repo, cache, time.Minute)

	require.True(t, gate.IsAdmin(context.Background(), "u1"), "a broken cache must not change the decision")
	require.Equal(t, 1, repo.calls)
}
