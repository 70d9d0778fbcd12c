package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gradebook/internal/model"
)

// KVBlobRepository 键值快照数据访问接口
type KVBlobRepository interface {
	Get(ctx context.Context, key string) (*model.KVBlob, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type kvBlobRepo struct {
	db *gorm.DB
}

// NewKVBlobRepo 创建 KVBlobRepository 实例
func NewKVBlobRepo(db *gorm.DB) KVBlobRepository {
	return &kvBlobRepo{db: db}
}

// Get 键不存在时返回 gorm.ErrRecordNotFound
func (r *kvBlobRepo) Get(ctx context.Context, key string) (*model.KVBlob, error) {
	var blob model.KVBlob
	err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&blob).Error
	if err != nil {
		return nil, err
	}
	return &blob, nil
}

// Put 整行覆盖（INSERT ... ON CONFLICT (key) DO UPDATE）
func (r *kvBlobRepo) Put(ctx context.Context, key string, value []byte) error {
	blob := model.KVBlob{Key: key, Value: value, UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&blob).Error
}

func (r *kvBlobRepo) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).
		Where("key = ?", key).
		Delete(&model.KVBlob{}).Error
}
