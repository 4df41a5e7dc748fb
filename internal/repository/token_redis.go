package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/internal/model"
	"github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "subtok:"

// Consume runs server-side so the compare and the delete are one atomic step.
// Expiry never needs classification here: an expired key is simply gone.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
  return 'missing'
end
local data = cjson.decode(v)
if tostring(data.user_id) ~= ARGV[1] then
  return 'user_mismatch'
end
if data.order_type ~= ARGV[2] then
  return 'type_mismatch'
end
redis.call('DEL', KEYS[1])
return 'ok'
`)

type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) TokenStore {
	return &RedisTokenStore{client: client}
}

type tokenPayload struct {
	UserID    uint64          `json:"user_id"`
	OrderType model.OrderType `json:"order_type"`
}

func (s *RedisTokenStore) Save(ctx context.Context, token *model.SubmissionToken) error {
	payload, err := json.Marshal(tokenPayload{UserID: token.UserID, OrderType: token.OrderType})
	if err != nil {
		return err
	}

	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("token already expired")
	}

	return s.client.Set(ctx, tokenKeyPrefix+token.Token, payload, ttl).Err()
}

func (s *RedisTokenStore) Consume(ctx context.Context, token string, userID uint64, orderType model.OrderType) error {
	outcome, err := consumeScript.Run(ctx, s.client,
		[]string{tokenKeyPrefix + token},
		fmt.Sprintf("%d", userID), string(orderType)).Text()
	if err != nil {
		return err
	}

	switch outcome {
	case "ok":
		return nil
	case "user_mismatch":
		return ErrTokenUserMismatch
	case "type_mismatch":
		return ErrTokenTypeMismatch
	default:
		return ErrTokenMissing
	}
}

// PurgeExpired is a no-op: Redis evicts expired tokens natively.
func (s *RedisTokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	return 0, nil
}
