// Package order serves order history views. Orders are written only by
// the checkout workflow; this service reads them.
package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/storefront/internal/auth"
	"github.com/jcmexdev/storefront/internal/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/core/ports"
)

type adminGate interface {
	IsAdmin(ctx context.Context, callerID string) bool
}

type Service struct {
	orders   ports.OrderRepository
	profiles ports.ProfileRepository
	gate     adminGate
}

func NewService(orders ports.OrderRepository, profiles ports.ProfileRepository, gate adminGate) *Service {
	return &Service{orders: orders, profiles: profiles, gate: gate}
}

// HistoryForCaller returns the caller's own orders with joined lines,
// newest first.
func (s *Service) HistoryForCaller(ctx context.Context, callerID string) ([]entity.Order, error) {
	orders, err := s.orders.ForCaller(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("load order history: %w", err)
	}
	return orders, nil
}

// ListAll returns every order with lines and purchaser profile. The gate
// is checked before any privileged read; a denied caller learns nothing
// about other callers' orders.
func (s *Service) ListAll(ctx context.Context, callerID string) ([]entity.Order, error) {
	if !s.gate.IsAdmin(ctx, callerID) {
		return nil, auth.ErrAccessDenied
	}

	orders, err := s.orders.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load all orders: %w", err)
	}

	// Attach purchaser profiles. A missing profile is rendered as
	// unknown, not an error, matching how the admin view degrades.
	cache := make(map[string]*entity.Profile)
	for i := range orders {
		callerID := orders[i].CallerID
		if p, ok := cache[callerID]; ok {
			orders[i].Profile = p
			continue
		}
		p, err := s.profiles.Get(ctx, callerID)
		if err != nil {
			if !errors.Is(err, ports.ErrNotFound) {
				slog.WarnContext(ctx, "profile lookup failed", "caller_id", callerID, "error", err)
			}
			cache[callerID] = nil
			continue
		}
		cache[callerID] = p
		orders[i].Profile = p
	}
	return orders, nil
}
