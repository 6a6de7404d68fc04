// AngelaMos | 2026
// blacklist.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pos-nt/backend/internal/core"
)

const blacklistKeyPrefix = "blacklist:"

// Blacklist is the revocation set for access tokens. Entries are keyed by
// token hash and expire on their own once the token could no longer verify
// anyway, so the set never needs sweeping.
type Blacklist struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewBlacklist(rdb *redis.Client, ttl time.Duration) *Blacklist {
	return &Blacklist{redis: rdb, ttl: ttl}
}

func (b *Blacklist) Add(
	ctx context.Context,
	token string,
	reason BlacklistReason,
) error {
	key := blacklistKeyPrefix + core.HashToken(token)

	if err := b.redis.Set(ctx, key, string(reason), b.ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}

	return nil
}

func (b *Blacklist) IsBlacklisted(
	ctx context.Context,
	token string,
) (bool, error) {
	key := blacklistKeyPrefix + core.HashToken(token)

	exists, err := b.redis.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}

	return exists > 0, nil
}

// Reason returns why a token was blacklisted, or empty if it is not.
func (b *Blacklist) Reason(
	ctx context.Context,
	token string,
) (string, error) {
	key := blacklistKeyPrefix + core.HashToken(token)

	reason, err := b.redis.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("get blacklist reason: %w", err)
	}

	return reason, nil
}
