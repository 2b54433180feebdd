package mask

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ramsey-B/verzoeken/pkg/redis"
)

// Redis shares the mask between instances through one Redis hash of mark counts. Entries carry no TTL.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key}
}

func (r *Redis) Add(ctx context.Context, id uuid.UUID) error {
	return r.client.HIncr(ctx, r.key, id.String())
}

func (r *Redis) Remove(ctx context.Context, id uuid.UUID) error {
	return r.client.HDecr(ctx, r.key, id.String())
}

// Marked skips members that are not uuids.
func (r *Redis) Marked(ctx context.Context) ([]uuid.UUID, error) {
	members, err := r.client.HKeys(ctx, r.key)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(members))
	for _, member := range members {
		id, err := uuid.Parse(member)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
