package store

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"gradebook/internal/model"
	apperrors "gradebook/pkg/errors"
)

// GradeStore 成绩集合的内存副本 + 快照持久化
//
// 内存集合是会话内的权威数据：写入快照失败时修改依然生效，
// 错误以 PersistenceError 的形式返回给调用方。
// HTTP 处理器并发执行，修改通过互斥锁串行化。
type GradeStore struct {
	mu     sync.RWMutex
	blobs  BlobStore
	key    string
	grades []model.Grade
	logger *zap.Logger
}

// NewGradeStore 创建 GradeStore，调用 Init 之前集合为空
func NewGradeStore(blobs BlobStore, key string, logger *zap.Logger) *GradeStore {
	return &GradeStore{
		blobs:  blobs,
		key:    key,
		grades: []model.Grade{},
		logger: logger,
	}
}

// LoadGrades 从 Blob 存储读取快照；不存在时 found=false
func (s *GradeStore) LoadGrades(ctx context.Context) (grades []model.Grade, found bool, err error) {
	data, found, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		return nil, false, apperrors.NewPersistence("load", err)
	}
	if !found {
		return nil, false, nil
	}
	grades, err = DecodeGrades(data)
	if err != nil {
		return nil, true, apperrors.NewPersistence("load", err)
	}
	return grades, true, nil
}

// SaveGrades 整体覆盖写入快照
func (s *GradeStore) SaveGrades(ctx context.Context, grades []model.Grade) error {
	data, err := EncodeGrades(grades)
	if err != nil {
		return apperrors.NewPersistence("save", err)
	}
	return apperrors.NewPersistence("save", s.blobs.Set(ctx, s.key, data))
}

// Init 载入快照作为初始内存状态
//   - 快照存在：使用快照
//   - 快照不存在：使用 seed（不立即写回）
//   - 读取或解码失败：使用 seed，并返回 PersistenceError
func (s *GradeStore) Init(ctx context.Context, seed []model.Grade) error {
	grades, found, err := s.LoadGrades(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case err != nil:
		s.logger.Warn("载入成绩快照失败，使用初始数据", zap.String("key", s.key), zap.Error(err))
		s.grades = cloneAll(seed)
		return err
	case !found:
		s.logger.Info("未找到成绩快照，使用初始数据", zap.String("key", s.key), zap.Int("count", len(seed)))
		s.grades = cloneAll(seed)
	default:
		s.logger.Info("成绩快照载入完成", zap.String("key", s.key), zap.Int("count", len(grades)))
		s.grades = grades
	}
	return nil
}

// Snapshot 返回当前集合的拷贝
func (s *GradeStore) Snapshot() []model.Grade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.grades)
}

// Find 按 ID 查找
func (s *GradeStore) Find(id string) (model.Grade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.grades {
		if g.ID == id {
			return g.Clone(), true
		}
	}
	return model.Grade{}, false
}

// Mutate 在锁内以当前集合为输入调用 fn，fn 返回的新集合成为内存状态并写入快照。
//
// fn 返回错误时内存与存储均不变，原样返回该错误。
// 写快照失败时内存状态已更新，返回 PersistenceError。
func (s *GradeStore) Mutate(ctx context.Context, fn func(current []model.Grade) ([]model.Grade, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(cloneAll(s.grades))
	if err != nil {
		return err
	}
	s.grades = next

	if err := s.SaveGrades(ctx, next); err != nil {
		s.logger.Warn("写入成绩快照失败，内存状态保持有效",
			zap.String("key", s.key),
			zap.Int("count", len(next)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// IsPersistenceOnly 判断错误是否仅为持久化失败（修改已在内存中生效）
func IsPersistenceOnly(err error) bool {
	return err != nil && errors.Is(err, apperrors.ErrPersistence)
}

func cloneAll(grades []model.Grade) []model.Grade {
	out := make([]model.Grade, len(grades))
	for i, g := range grades {
		out[i] = g.Clone()
	}
	return out
}
