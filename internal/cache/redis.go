package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const (
	docsCountKey = "agridocs:docs:count"

	// hash entries are refreshed on every dedupe hit, the TTL only bounds
	// memory for hashes that stop arriving
	docHashTTL   = time.Hour
	docsCountTTL = 5 * time.Minute
)

func docHashKey(hash string) string {
	return "agridocs:doc:hash:" + hash
}

var _ DocumentCache = (*Redis)(nil)

type Redis struct {
	client *redis.Client
}

func NewRedis(addr string) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	return &Redis{client: client}
}

func (r *Redis) GetDocumentID(ctx context.Context, hash string) (string, error) {
	res := r.client.Get(ctx, docHashKey(hash))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return "", nil
		}
		return "", res.Err()
	}

	return res.Val(), nil
}

func (r *Redis) SetDocumentID(ctx context.Context, hash, id string) error {
	return r.client.Set(ctx, docHashKey(hash), id, docHashTTL).Err()
}

func (r *Redis) GetDocsCount(ctx context.Context) (int64, bool, error) {
	res := r.client.Get(ctx, docsCountKey)
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return 0, false, nil
		}
		return 0, false, res.Err()
	}

	count, err := strconv.ParseInt(res.Val(), 10, 64)
	if err != nil {
		return 0, false, err
	}

	return count, true, nil
}

func (r *Redis) SetDocsCount(ctx context.Context, count int64) error {
	return r.client.Set(ctx, docsCountKey, count, docsCountTTL).Err()
}
