package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/seapod-portal/internal/portal/entity"
	"github.com/redis/go-redis/v9"
)

// 向导会话是短命的交互状态，不进关系库，放 redis 带 TTL。
// 一个订单同时最多一个会话，key 按订单号即可。
const wizardSessionTTL = 24 * time.Hour

// RedisWizardStore 建机向导会话存储
type RedisWizardStore struct {
	rdb *redis.Client
}

func NewRedisWizardStore(rdb *redis.Client) *RedisWizardStore {
	return &RedisWizardStore{rdb: rdb}
}

func wizardKey(orderID string) string {
	return fmt.Sprintf("wizard:order:%s", orderID)
}

func (s *RedisWizardStore) Get(ctx context.Context, orderID string) (*entity.WizardSession, error) {
	data, err := s.rdb.Get(ctx, wizardKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var session entity.WizardSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode wizard session: %w", err)
	}
	return &session, nil
}

func (s *RedisWizardStore) Save(ctx context.Context, session *entity.WizardSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode wizard session: %w", err)
	}
	return s.rdb.Set(ctx, wizardKey(session.OrderID), data, wizardSessionTTL).Err()
}

func (s *RedisWizardStore) Delete(ctx context.Context, orderID string) error {
	return s.rdb.Del(ctx, wizardKey(orderID)).Err()
}
