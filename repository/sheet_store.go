package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chamado-service/spreadsheet"

	"github.com/redis/go-redis/v9"
)

// ErrSheetNotFound is returned when the owner has no spreadsheet loaded.
var ErrSheetNotFound = errors.New("spreadsheet not found")

const sheetKeyPrefix = "chamado:planilha:"

// StoredSheet is a parsed upload kept for one user.
type StoredSheet struct {
	FileName   string            `json:"file_name"`
	UploadedAt time.Time         `json:"uploaded_at"`
	Sheet      spreadsheet.Sheet `json:"sheet"`
}

// SheetStore keeps the current spreadsheet of each user.
type SheetStore interface {
	Save(ctx context.Context, owner string, sheet *StoredSheet) error
	Get(ctx context.Context, owner string) (*StoredSheet, error)
	Delete(ctx context.Context, owner string) error
}

// RedisSheetStore stores sheets as JSON with a TTL.
type RedisSheetStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSheetStore(rdb *redis.Client, ttl time.Duration) *RedisSheetStore {
	return &RedisSheetStore{rdb: rdb, ttl: ttl}
}

func (s *RedisSheetStore) Save(ctx context.Context, owner string, sheet *StoredSheet) error {
	b, err := json.Marshal(sheet)
	if err != nil {
		return fmt.Errorf("marshal sheet: %w", err)
	}
	return s.rdb.Set(ctx, sheetKeyPrefix+owner, b, s.ttl).Err()
}

func (s *RedisSheetStore) Get(ctx context.Context, owner string) (*StoredSheet, error) {
	val, err := s.rdb.Get(ctx, sheetKeyPrefix+owner).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSheetNotFound
	}
	if err != nil {
		return nil, err
	}
	var sheet StoredSheet
	if err := json.Unmarshal(val, &sheet); err != nil {
		return nil, fmt.Errorf("decode sheet: %w", err)
	}
	return &sheet, nil
}

func (s *RedisSheetStore) Delete(ctx context.Context, owner string) error {
	return s.rdb.Del(ctx, sheetKeyPrefix+owner).Err()
}
