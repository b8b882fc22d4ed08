package repository

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/deppfellow/tutorial-service/internal/model"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (*RedisTutorialRepository, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisTutorialRepository(client), mr
}

func seed(t *testing.T, repo TutorialRepository, tutorials ...*model.Tutorial) []*model.Tutorial {
	t.Helper()

	saved := make([]*model.Tutorial, 0, len(tutorials))
	for _, tutorial := range tutorials {
		s, err := repo.Save(context.Background(), tutorial)
		require.NoError(t, err)
		saved = append(saved, s)
	}
	return saved
}

func TestRedisRepository_SaveAssignsIncreasingIDs(t *testing.T) {
	repo, _ := newRedisRepo(t)

	saved := seed(t, repo,
		model.NewTutorial("Go Basics", "intro", false),
		model.NewTutorial("Go Channels", "concurrency", true),
	)

	assert.Equal(t, int64(1), saved[0].ID)
	assert.Equal(t, int64(2), saved[1].ID)
	assert.Equal(t, "Go Channels", saved[1].Title)
	assert.True(t, saved[1].Published)
}

func TestRedisRepository_SaveDoesNotMutateInput(t *testing.T) {
	repo, _ := newRedisRepo(t)

	input := model.NewTutorial("t", "d", false)
	_, err := repo.Save(context.Background(), input)
	require.NoError(t, err)

	assert.True(t, input.IsNew())
}

func TestRedisRepository_UpdateKeepsID(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	saved := seed(t, repo, model.NewTutorial("Old", "old desc", false))[0]

	saved.Overwrite("New", "new desc", true)
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Tutorial{ID: saved.ID, Title: "New", Description: "new desc", Published: true}, *found)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRedisRepository_UpdateUnknownIsNotFound(t *testing.T) {
	repo, _ := newRedisRepo(t)

	_, err := repo.Save(context.Background(), &model.Tutorial{ID: 42, Title: "ghost"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRedisRepository_FindByIDUnknown(t *testing.T) {
	repo, _ := newRedisRepo(t)

	tutorial, err := repo.FindByID(context.Background(), 7)
	assert.Nil(t, tutorial)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRedisRepository_FindByTitleContainingIsCaseInsensitive(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	seed(t, repo,
		model.NewTutorial("Spring Boot", "", false),
		model.NewTutorial("Go in Action", "", false),
		model.NewTutorial("Bootstrap 5", "", false),
	)

	found, err := repo.FindByTitleContaining(ctx, "BOOT")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Spring Boot", found[0].Title)
	assert.Equal(t, "Bootstrap 5", found[1].Title)

	none, err := repo.FindByTitleContaining(ctx, "rust")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestRedisRepository_FindByPublished(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	seed(t, repo,
		model.NewTutorial("a", "", true),
		model.NewTutorial("b", "", false),
		model.NewTutorial("c", "", true),
	)

	published, err := repo.FindByPublished(ctx, true)
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, "a", published[0].Title)
	assert.Equal(t, "c", published[1].Title)

	drafts, err := repo.FindByPublished(ctx, false)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "b", drafts[0].Title)
}

func TestRedisRepository_DeleteByIDIsIdempotent(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	saved := seed(t, repo, model.NewTutorial("a", "", false), model.NewTutorial("b", "", false))

	require.NoError(t, repo.DeleteByID(ctx, saved[0].ID))
	require.NoError(t, repo.DeleteByID(ctx, saved[0].ID))
	require.NoError(t, repo.DeleteByID(ctx, 999))

	_, err := repo.FindByID(ctx, saved[0].ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, saved[1].ID, all[0].ID)
}

func TestRedisRepository_DeleteAllKeepsIDsUnused(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	seed(t, repo, model.NewTutorial("a", "", false), model.NewTutorial("b", "", false))

	require.NoError(t, repo.DeleteAll(ctx))
	require.NoError(t, repo.DeleteAll(ctx))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.False(t, mr.Exists("tutorials:1"))
	assert.False(t, mr.Exists("tutorials:index"))

	next := seed(t, repo, model.NewTutorial("c", "", false))[0]
	assert.Equal(t, int64(3), next.ID)
}

func TestRedisRepository_LoadAllSkipsDanglingIndexEntries(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	seed(t, repo, model.NewTutorial("a", "", false), model.NewTutorial("b", "", false))
	mr.Del("tutorials:1")

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].Title)
}

func TestRedisRepository_PrefixIsolation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	first := NewRedisTutorialRepositoryWithPrefix(client, "one")
	second := NewRedisTutorialRepositoryWithPrefix(client, "two")

	seed(t, first, model.NewTutorial("only in one", "", false))

	all, err := second.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedisRepository_StoreFailureIsWrapped(t *testing.T) {
	repo, mr := newRedisRepo(t)
	mr.Close()

	_, err := repo.FindAll(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "listing tutorials")
}

func TestRedisRepository_DeleteAllRetriesWhenIndexChanges(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()

	seed(t, repo, model.NewTutorial("a", "", false))

	var calls int
	var late *model.Tutorial
	repo.beforeDeleteAll = func() {
		calls++
		if calls == 1 {
			var err error
			late, err = repo.Save(ctx, model.NewTutorial("late", "", false))
			require.NoError(t, err)
		}
	}

	require.NoError(t, repo.DeleteAll(ctx))
	assert.Equal(t, 2, calls)
	require.NotNil(t, late)

	_, err := repo.FindByID(ctx, late.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, mr.Exists("tutorials:2"))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedisRepository_DeleteAllGivesUpWhenIndexKeepsChanging(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	repo.beforeDeleteAll = func() {
		_, err := repo.Save(ctx, model.NewTutorial("again", "", false))
		require.NoError(t, err)
	}

	err := repo.DeleteAll(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, redis.TxFailedErr))
}
