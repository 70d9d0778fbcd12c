// Package store 成绩集合的内存状态与快照持久化。
//
// 快照以整体覆盖的方式写入一个键值 Blob 存储（对应浏览器的 localStorage），
// 后写覆盖先写，不做版本控制，也不做部分写入恢复。
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gorm.io/gorm"

	"gradebook/internal/repository"
	"gradebook/pkg/redis"
)

// BlobStore 键值快照存储
type BlobStore interface {
	// Get 读取快照；键不存在时 found=false 且 err=nil
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set 整体覆盖写入
	Set(ctx context.Context, key string, value []byte) error
}

// ── memory ──

// MemoryBlobStore 进程内存储，重启即丢失
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryBlobStore 创建内存存储
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemoryBlobStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.blobs[key] = v
	return nil
}

// ── file ──

// FileBlobStore 目录存储：每个键对应 "<dir>/<key>.json"，写入时先写临时文件再 rename
type FileBlobStore struct {
	dir string
}

// NewFileBlobStore 创建文件存储
func NewFileBlobStore(dir string) *FileBlobStore {
	return &FileBlobStore{dir: dir}
}

func (s *FileBlobStore) pathFor(key string) string {
	return filepath.Join(s.dir, filepath.Base(key)+".json")
}

func (s *FileBlobStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := os.ReadFile(s.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *FileBlobStore) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	target := s.pathFor(key)
	tmp, err := os.CreateTemp(s.dir, ".blob-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// ── redis ──

// RedisBlobStore 基于 Redis 字符串键
type RedisBlobStore struct {
	client *redis.Client
}

// NewRedisBlobStore 创建 Redis 存储
func NewRedisBlobStore(client *redis.Client) *RedisBlobStore {
	return &RedisBlobStore{client: client}
}

func (s *RedisBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.client.GetBlob(ctx, key)
}

func (s *RedisBlobStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.SetBlob(ctx, key, value)
}

// ── postgres ──

// PostgresBlobStore 基于 kv_blobs 表
type PostgresBlobStore struct {
	repo repository.KVBlobRepository
}

// NewPostgresBlobStore 创建 PostgreSQL 存储
func NewPostgresBlobStore(repo repository.KVBlobRepository) *PostgresBlobStore {
	return &PostgresBlobStore{repo: repo}
}

func (s *PostgresBlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := s.repo.Get(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob.Value, true, nil
}

func (s *PostgresBlobStore) Set(ctx context.Context, key string, value []byte) error {
	return s.repo.Put(ctx, key, value)
}
