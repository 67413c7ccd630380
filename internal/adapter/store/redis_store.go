package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"adforge/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each campaign as a JSON string under campaign:<owner>:<id>
// and a per-owner sorted set, scored by creation time, for listing.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "adforge"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

// validID accepts only the canonical 36-character UUID form the service issues.
// With no ':' in the id, the owner segment of a key is unambiguous.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func (r *RedisStore) recordKey(ownerID, id string) string {
	return fmt.Sprintf("%s:campaign:%s:%s", r.prefix, ownerID, id)
}

func (r *RedisStore) indexKey(ownerID string) string {
	return fmt.Sprintf("%s:campaigns:%s", r.prefix, ownerID)
}

func (r *RedisStore) Save(ctx context.Context, rec *entity.CampaignRecord) error {
	if !validID(rec.ID) {
		return fmt.Errorf("campaign id %q is not a UUID", rec.ID)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode campaign: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.recordKey(rec.OwnerID, rec.ID), raw, 0)
		pipe.ZAdd(ctx, r.indexKey(rec.OwnerID), redis.Z{
			Score:  float64(rec.CreatedAt.UnixMilli()),
			Member: rec.ID,
		})
		return nil
	})
	return err
}

func (r *RedisStore) Get(ctx context.Context, ownerID, id string) (*entity.CampaignRecord, error) {
	if !validID(id) {
		return nil, entity.ErrResourceNotFound
	}
	val, err := r.client.Get(ctx, r.recordKey(ownerID, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, entity.ErrResourceNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec entity.CampaignRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("decode campaign %s: %w", id, err)
	}
	if rec.OwnerID != ownerID {
		return nil, entity.ErrResourceNotFound
	}
	return &rec, nil
}

// List returns the newest campaigns first. Index entries whose record has
// vanished are skipped.
func (r *RedisStore) List(ctx context.Context, ownerID string, limit int) ([]*entity.CampaignRecord, error) {
	ids, err := r.client.ZRevRange(ctx, r.indexKey(ownerID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*entity.CampaignRecord{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.recordKey(ownerID, id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*entity.CampaignRecord, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var rec entity.CampaignRecord
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decode campaign %s: %w", ids[i], err)
		}
		if rec.OwnerID != ownerID {
			continue
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (r *RedisStore) Delete(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return entity.ErrResourceNotFound
	}
	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, r.recordKey(ownerID, id))
		pipe.ZRem(ctx, r.indexKey(ownerID), id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return entity.ErrResourceNotFound
	}
	return nil
}
