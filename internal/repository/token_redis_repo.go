package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"go-media-cms/internal/model"
)

// Each token is a hash at <prefix>token:<value>, indexed by holder in the set
// <prefix>holder:<id> and by expiry in the sorted set <prefix>expiry (score
// is expires_at in unix milliseconds). Mutations touching more than one key
// run as a single Lua script.

const putTokenScript = `
if redis.call("EXISTS", KEYS[1]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], "id", ARGV[1], "holder_id", ARGV[3], "issued_at", ARGV[4], "expires_at", ARGV[5])
redis.call("SADD", KEYS[2], ARGV[2])
redis.call("ZADD", KEYS[3], ARGV[5], ARGV[2])
return 1
`

const deleteTokenScript = `
redis.call("ZREM", KEYS[2], ARGV[1])
local holder = redis.call("HGET", KEYS[1], "holder_id")
if not holder then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("SREM", ARGV[2] .. holder, ARGV[1])
return 1
`

const deleteHolderTokensScript = `
local values = redis.call("SMEMBERS", KEYS[1])
for _, v in ipairs(values) do
  redis.call("DEL", ARGV[1] .. v)
  redis.call("ZREM", KEYS[2], v)
end
redis.call("DEL", KEYS[1])
return #values
`

const deleteExpiredTokensScript = `
local values = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", "(" .. ARGV[1])
local removed = 0
for _, v in ipairs(values) do
  local key = ARGV[2] .. v
  local holder = redis.call("HGET", key, "holder_id")
  if holder then
    redis.call("SREM", ARGV[3] .. holder, v)
    removed = removed + redis.call("DEL", key)
  end
  redis.call("ZREM", KEYS[1], v)
end
return removed
`

var (
	putTokenLua            = redis.NewScript(putTokenScript)
	deleteTokenLua         = redis.NewScript(deleteTokenScript)
	deleteHolderTokensLua  = redis.NewScript(deleteHolderTokensScript)
	deleteExpiredTokensLua = redis.NewScript(deleteExpiredTokensScript)
)

// RedisTokenRepository is the Redis allow-list of issued session tokens.
// It needs a single Redis node: the revocation and sweep scripts derive
// token and holder keys from their arguments, which Redis Cluster rejects.
type RedisTokenRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisTokenRepository(client *redis.Client, prefix string) *RedisTokenRepository {
	if prefix == "" {
		prefix = "cms:"
	}
	return &RedisTokenRepository{client: client, prefix: prefix}
}

func (r *RedisTokenRepository) tokenPrefix() string {
	return r.prefix + "token:"
}

func (r *RedisTokenRepository) holderPrefix() string {
	return r.prefix + "holder:"
}

func (r *RedisTokenRepository) tokenKey(value string) string {
	return r.tokenPrefix() + value
}

func (r *RedisTokenRepository) holderKey(holderID int64) string {
	return r.holderPrefix() + strconv.FormatInt(holderID, 10)
}

func (r *RedisTokenRepository) expiryKey() string {
	return r.prefix + "expiry"
}

func (r *RedisTokenRepository) Put(ctx context.Context, token model.IssuedToken) error {
	inserted, err := putTokenLua.Run(ctx, r.client,
		[]string{r.tokenKey(token.Value), r.holderKey(token.HolderID), r.expiryKey()},
		token.ID,
		token.Value,
		strconv.FormatInt(token.HolderID, 10),
		strconv.FormatInt(token.IssuedAt.UnixMilli(), 10),
		strconv.FormatInt(token.ExpiresAt.UnixMilli(), 10),
	).Int64()
	if err != nil {
		return fmt.Errorf("store issued token: %w", err)
	}
	if inserted == 0 {
		return model.ErrTokenConflict
	}
	return nil
}

func (r *RedisTokenRepository) FindByValue(ctx context.Context, value string) (model.IssuedToken, error) {
	fields, err := r.client.HGetAll(ctx, r.tokenKey(value)).Result()
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("find token by value: %w", err)
	}
	if len(fields) == 0 {
		return model.IssuedToken{}, model.ErrTokenNotFound
	}

	token, err := decodeTokenHash(value, fields)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("find token by value: %w", err)
	}
	return token, nil
}

func (r *RedisTokenRepository) FindByHolder(ctx context.Context, holderID int64) ([]model.IssuedToken, error) {
	values, err := r.client.SMembers(ctx, r.holderKey(holderID)).Result()
	if err != nil {
		return nil, fmt.Errorf("find tokens by holder: %w", err)
	}

	tokens := make([]model.IssuedToken, 0, len(values))
	if len(values) == 0 {
		return tokens, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(values))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, value := range values {
			cmds[i] = pipe.HGetAll(ctx, r.tokenKey(value))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find tokens by holder: %w", err)
	}

	for i, cmd := range cmds {
		fields := cmd.Val()
		// Removed between SMEMBERS and the pipeline.
		if len(fields) == 0 {
			continue
		}
		token, err := decodeTokenHash(values[i], fields)
		if err != nil {
			return nil, fmt.Errorf("find tokens by holder: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

func (r *RedisTokenRepository) DeleteByValue(ctx context.Context, value string) error {
	err := deleteTokenLua.Run(ctx, r.client,
		[]string{r.tokenKey(value), r.expiryKey()},
		value, r.holderPrefix(),
	).Err()
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisTokenRepository) DeleteByHolder(ctx context.Context, holderID int64) error {
	err := deleteHolderTokensLua.Run(ctx, r.client,
		[]string{r.holderKey(holderID), r.expiryKey()},
		r.tokenPrefix(),
	).Err()
	if err != nil {
		return fmt.Errorf("revoke all holder tokens: %w", err)
	}
	return nil
}

func (r *RedisTokenRepository) DeleteExpiredBefore(ctx context.Context, threshold time.Time) (int64, error) {
	removed, err := deleteExpiredTokensLua.Run(ctx, r.client,
		[]string{r.expiryKey()},
		strconv.FormatInt(threshold.UnixMilli(), 10), r.tokenPrefix(), r.holderPrefix(),
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return removed, nil
}

func (r *RedisTokenRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decodeTokenHash(value string, fields map[string]string) (model.IssuedToken, error) {
	holderID, err := strconv.ParseInt(fields["holder_id"], 10, 64)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("decode holder_id: %w", err)
	}
	issuedAt, err := strconv.ParseInt(fields["issued_at"], 10, 64)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("decode issued_at: %w", err)
	}
	expiresAt, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("decode expires_at: %w", err)
	}

	return model.IssuedToken{
		ID:        fields["id"],
		Value:     value,
		HolderID:  holderID,
		IssuedAt:  time.UnixMilli(issuedAt).UTC(),
		ExpiresAt: time.UnixMilli(expiresAt).UTC(),
	}, nil
}
