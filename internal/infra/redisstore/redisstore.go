// Package redisstore holds the Redis-backed lookaside concerns: session
// resolution, the admin-role cache, and checkout idempotency keys.
// Everything here is either written by an external collaborator
// (sessions) or safe to lose (cache, idempotency records).
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jcmexdev/storefront/internal/core/ports"
)

type Client struct {
	rdb    *redis.Client
	prefix string
}

func New(addr, prefix string) *Client {
	return &Client{
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
		prefix: prefix,
	}
}

func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, kind, id)
}

// Resolve implements ports.SessionResolver. The authentication
// collaborator writes "session:<token>" → caller ID entries; an absent
// key means no live session.
func (c *Client) Resolve(ctx context.Context, token string) (string, error) {
	callerID, err := c.rdb.Get(ctx, c.key("session", token)).Result()
	if err == redis.Nil {
		return "", ports.ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("redis: resolve session: %w", err)
	}
	return callerID, nil
}

// GetAdminFlag returns the cached admin decision for a caller.
// ok is false on a miss.
func (c *Client) GetAdminFlag(ctx context.Context, callerID string) (admin, ok bool, err error) {
	v, err := c.rdb.Get(ctx, c.key("admin", callerID)).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("redis: get admin flag: %w", err)
	}
	return v == "1", true, nil
}

func (c *Client) SetAdminFlag(ctx context.Context, callerID string, admin bool, ttl time.Duration) error {
	v := "0"
	if admin {
		v = "1"
	}
	if err := c.rdb.Set(ctx, c.key("admin", callerID), v, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set admin flag: %w", err)
	}
	return nil
}

// idemKey builds the idempotency Redis key. Scoped per caller so the
// same submission key from two callers names two records: a replay only
// ever returns the submitting caller's own order.
func (c *Client) idemKey(callerID, key string) string {
	return c.key("idem", callerID+":"+key)
}

// OrderForKey returns the order a previous submission by this caller
// with this idempotency key produced. ok is false when the key is unseen.
func (c *Client) OrderForKey(ctx context.Context, callerID, key string) (string, bool, error) {
	orderID, err := c.rdb.Get(ctx, c.idemKey(callerID, key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: idempotency lookup: %w", err)
	}
	return orderID, true, nil
}

func (c *Client) RememberOrder(ctx context.Context, callerID, key, orderID string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.idemKey(callerID, key), orderID, ttl).Err(); err != nil {
		return fmt.Errorf("redis: remember idempotency key: %w", err)
	}
	return nil
}
