package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/deppfellow/tutorial-service/internal/model"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces every key the Redis adapter writes.
const DefaultRedisKeyPrefix = "tutorials"

// maxDeleteAllAttempts bounds DeleteAll retries when the index changes
// underneath it.
const maxDeleteAllAttempts = 10

// RedisTutorialRepository stores tutorials in Redis.
//
// Layout:
//
//	<prefix>:seq    INCR counter handing out ids
//	<prefix>:index  sorted set of ids, score = id
//	<prefix>:<id>   JSON encoded tutorial
//
// The counter is never reset, so deleted ids are never reissued.
type RedisTutorialRepository struct {
	client redis.UniversalClient
	prefix string

	// beforeDeleteAll runs inside the DeleteAll transaction, after the
	// index is read. Tests use it to interleave writes.
	beforeDeleteAll func()
}

// NewRedisTutorialRepository returns a repository using client and the
// default key prefix.
func NewRedisTutorialRepository(client redis.UniversalClient) *RedisTutorialRepository {
	return NewRedisTutorialRepositoryWithPrefix(client, DefaultRedisKeyPrefix)
}

// NewRedisTutorialRepositoryWithPrefix returns a repository whose keys all
// start with prefix.
func NewRedisTutorialRepositoryWithPrefix(client redis.UniversalClient, prefix string) *RedisTutorialRepository {
	return &RedisTutorialRepository{client: client, prefix: prefix}
}

func (r *RedisTutorialRepository) seqKey() string {
	return r.prefix + ":seq"
}

func (r *RedisTutorialRepository) indexKey() string {
	return r.prefix + ":index"
}

func (r *RedisTutorialRepository) itemKey(id int64) string {
	return r.prefix + ":" + strconv.FormatInt(id, 10)
}

func (r *RedisTutorialRepository) Save(ctx context.Context, t *model.Tutorial) (*model.Tutorial, error) {
	saved := *t

	if saved.IsNew() {
		id, err := r.client.Incr(ctx, r.seqKey()).Result()
		if err != nil {
			return nil, errors.Wrap(err, "allocating tutorial id")
		}
		saved.ID = id

		payload, err := json.Marshal(saved)
		if err != nil {
			return nil, errors.Wrap(err, "encoding tutorial")
		}

		_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.itemKey(id), payload, 0)
			pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)})
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "inserting tutorial")
		}
		return &saved, nil
	}

	payload, err := json.Marshal(saved)
	if err != nil {
		return nil, errors.Wrap(err, "encoding tutorial")
	}

	// XX only overwrites an existing key, so a concurrently deleted tutorial
	// is not resurrected.
	updated, err := r.client.SetXX(ctx, r.itemKey(saved.ID), payload, 0).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "updating tutorial %d", saved.ID)
	}
	if !updated {
		return nil, errors.Wrapf(ErrNotFound, "updating tutorial %d", saved.ID)
	}
	return &saved, nil
}

func (r *RedisTutorialRepository) FindAll(ctx context.Context) ([]model.Tutorial, error) {
	tutorials, err := r.loadAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing tutorials")
	}
	return tutorials, nil
}

func (r *RedisTutorialRepository) FindByID(ctx context.Context, id int64) (*model.Tutorial, error) {
	payload, err := r.client.Get(ctx, r.itemKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(ErrNotFound, "tutorial %d", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "finding tutorial %d", id)
	}

	var tutorial model.Tutorial
	if err := json.Unmarshal(payload, &tutorial); err != nil {
		return nil, errors.Wrapf(err, "decoding tutorial %d", id)
	}
	return &tutorial, nil
}

func (r *RedisTutorialRepository) FindByTitleContaining(ctx context.Context, title string) ([]model.Tutorial, error) {
	all, err := r.loadAll(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "searching tutorials by title %q", title)
	}

	needle := strings.ToLower(title)
	return filterTutorials(all, func(t model.Tutorial) bool {
		return strings.Contains(strings.ToLower(t.Title), needle)
	}), nil
}

func (r *RedisTutorialRepository) FindByPublished(ctx context.Context, published bool) ([]model.Tutorial, error) {
	all, err := r.loadAll(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "listing tutorials with published=%t", published)
	}

	return filterTutorials(all, func(t model.Tutorial) bool {
		return t.Published == published
	}), nil
}

func (r *RedisTutorialRepository) DeleteByID(ctx context.Context, id int64) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.itemKey(id))
		pipe.ZRem(ctx, r.indexKey(), strconv.FormatInt(id, 10))
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "deleting tutorial %d", id)
	}
	return nil
}

// DeleteAll removes every indexed tutorial and the index itself. The index
// is watched, so an insert landing between the read and the delete aborts
// the transaction and the whole removal is retried.
func (r *RedisTutorialRepository) DeleteAll(ctx context.Context) error {
	for attempt := 0; attempt < maxDeleteAllAttempts; attempt++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			ids, err := tx.ZRange(ctx, r.indexKey(), 0, -1).Result()
			if err != nil {
				return errors.Wrap(err, "reading tutorial index")
			}

			keys := make([]string, 0, len(ids)+1)
			for _, id := range ids {
				keys = append(keys, r.prefix+":"+id)
			}
			keys = append(keys, r.indexKey())

			if r.beforeDeleteAll != nil {
				r.beforeDeleteAll()
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, keys...)
				return nil
			})
			return err
		}, r.indexKey())

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return errors.Wrap(err, "deleting all tutorials")
		}
		return nil
	}

	return errors.Wrapf(redis.TxFailedErr, "deleting all tutorials: index kept changing after %d attempts", maxDeleteAllAttempts)
}

// loadAll reads every indexed tutorial in id order. Index entries whose
// value has disappeared are skipped.
func (r *RedisTutorialRepository) loadAll(ctx context.Context) ([]model.Tutorial, error) {
	ids, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	tutorials := make([]model.Tutorial, 0, len(ids))
	if len(ids) == 0 {
		return tutorials, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.prefix + ":" + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var tutorial model.Tutorial
		if err := json.Unmarshal([]byte(raw), &tutorial); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", keys[i])
		}
		tutorials = append(tutorials, tutorial)
	}

	return tutorials, nil
}

func filterTutorials(tutorials []model.Tutorial, keep func(model.Tutorial) bool) []model.Tutorial {
	filtered := make([]model.Tutorial, 0, len(tutorials))
	for _, t := range tutorials {
		if keep(t) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
