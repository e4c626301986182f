// Package auth decides whether a caller may touch admin-only surfaces.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
)

// ErrAccessDenied is returned by admin-gated operations when the caller
// does not hold the admin role.
var ErrAccessDenied = errors.New("access denied")

// roleCache keeps the gate off the hot path. Implementations are
// best-effort: a cache error is treated as a miss.
type roleCache interface {
	GetAdminFlag(ctx context.Context, callerID string) (admin, ok bool, err error)
	SetAdminFlag(ctx context.Context, callerID string, admin bool, ttl time.Duration) error
}

// Gate answers "does this caller hold the admin role". It fails closed:
// an absent role row and a failed lookup both come back as not-admin,
// never as an error.
type Gate struct {
	roles ports.RoleRepository
	cache roleCache // nil-safe: every check hits the store if nil
	ttl   time.Duration
}

func NewGate(roles ports.RoleRepository, cache roleCache, ttl time.Duration) *Gate {
	return &Gate{roles: roles, cache: cache, ttl: ttl}
}

// IsAdmin reports whether the caller holds the admin role. The lookup is
// tri-state internally (admin / not admin / lookup failed); a failed
// lookup degrades to not-admin so privileged surfaces stay closed when
// the store is unavailable.
func (g *Gate) IsAdmin(ctx context.Context, callerID string) bool {
	if callerID == "" {
		return false
	}

	if g.cache != nil {
		if admin, ok, err := g.cache.GetAdminFlag(ctx, callerID); err == nil && ok {
			return admin
		}
	}

	admin, err := g.roles.HasRole(ctx, callerID, entity.RoleAdmin)
	if err != nil {
		slog.WarnContext(ctx, "role lookup failed, denying admin access",
			"caller_id", callerID, "error", err)
		return false
	}

	if g.cache != nil {
		if err := g.cache.SetAdminFlag(ctx, callerID, admin, g.ttl); err != nil {
			slog.DebugContext(ctx, "role cache write failed", "caller_id", callerID, "error", err)
		}
	}
	return admin
}
