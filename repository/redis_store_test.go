package repository_test

import (
	"context"
	"testing"
	"time"

	"chamado-service/models"
	"chamado-service/repository"
	"chamado-service/spreadsheet"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisSheetStore_RoundTripAndExpiry(t *testing.T) {
	mr, rdb := setupRedis(t)
	store := repository.NewRedisSheetStore(rdb, time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "ana@uisa.com.br")
	assert.ErrorIs(t, err, repository.ErrSheetNotFound)

	in := &repository.StoredSheet{
		FileName: "base.xlsx",
		Sheet: spreadsheet.Sheet{Name: "Sheet1", Rows: []spreadsheet.Row{
			{Line: 1, Cells: map[string]string{"A": "Nome"}},
			{Line: 2, Cells: map[string]string{"A": "Ana"}},
		}},
	}
	require.NoError(t, store.Save(ctx, "ana@uisa.com.br", in))

	out, err := store.Get(ctx, "ana@uisa.com.br")
	require.NoError(t, err)
	assert.Equal(t, "base.xlsx", out.FileName)
	assert.Equal(t, 2, out.Sheet.Len())

	_, err = store.Get(ctx, "bia@uisa.com.br")
	assert.ErrorIs(t, err, repository.ErrSheetNotFound)

	mr.FastForward(2 * time.Hour)
	_, err = store.Get(ctx, "ana@uisa.com.br")
	assert.ErrorIs(t, err, repository.ErrSheetNotFound)
}

func TestRedisSheetStore_Delete(t *testing.T) {
	_, rdb := setupRedis(t)
	store := repository.NewRedisSheetStore(rdb, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ana@uisa.com.br", &repository.StoredSheet{FileName: "x.xlsx"}))
	require.NoError(t, store.Delete(ctx, "ana@uisa.com.br"))

	_, err := store.Get(ctx, "ana@uisa.com.br")
	assert.ErrorIs(t, err, repository.ErrSheetNotFound)
}

func TestRedisJobStore_QueueAndStatus(t *testing.T) {
	_, rdb := setupRedis(t)
	store := repository.NewRedisJobStore(rdb, 24*time.Hour)
	ctx := context.Background()

	job := &models.BatchJob{ID: "job-1", Owner: "ana@uisa.com.br", Status: models.JobStatusQueued}
	require.NoError(t, store.Enqueue(ctx, job))

	id, err := store.Next(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "job-1", id)

	job.Status = models.JobStatusDone
	job.Result = &models.BatchResult{TotalProcessados: 1, Sucessos: 1}
	require.NoError(t, store.Update(ctx, job))

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDone, got.Status)
	assert.Equal(t, 1, got.Result.Sucessos)
	assert.False(t, got.UpdatedAt.IsZero())

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrJobNotFound)
}
