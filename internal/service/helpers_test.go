package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"gradebook/internal/catalog"
	"gradebook/internal/identity"
	"gradebook/internal/model"
	"gradebook/internal/policy"
	"gradebook/internal/store"
)

// ── 测试辅助 ──

var (
	adminUser   = model.User{ID: "1", Name: "Admin User", Email: "admin@example.com", Role: model.RoleAdmin}
	teacherUser = model.User{ID: "2", Name: "Teacher User", Email: "teacher@example.com", Role: model.RoleTeacher}
	studentUser = model.User{ID: "3", Name: "Student User", Email: "student@example.com", Role: model.RoleStudent}
)

var fixedNow = time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC)

// failingBlobStore 读写均失败
type failingBlobStore struct{}

func (failingBlobStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk unavailable")
}
func (failingBlobStore) Set(context.Context, string, []byte) error {
	return errors.New("disk unavailable")
}

type testEnv struct {
	provider *identity.SessionProvider
	store    *store.GradeStore
	blobs    store.BlobStore
	catalog  *catalog.Catalog
	mutator  *policy.Mutator
}

func newTestEnv(t *testing.T, blobs store.BlobStore) *testEnv {
	t.Helper()
	if blobs == nil {
		blobs = store.NewMemoryBlobStore()
	}
	gs := store.NewGradeStore(blobs, "grades", zap.NewNop())
	_ = gs.Init(context.Background(), seedGrades())

	seq := 100
	mutator := policy.NewMutator(
		func() time.Time { return fixedNow },
		func() string { seq++; return fmt.Sprintf("g-%d", seq) },
	)
	return &testEnv{
		provider: identity.NewSessionProvider(nil, zap.NewNop()),
		store:    gs,
		blobs:    blobs,
		catalog:  catalog.Default(),
		mutator:  mutator,
	}
}

func seedGrades() []model.Grade {
	fb := "Buen desempeño con derivadas!"
	return []model.Grade{
		{ID: "1", StudentID: "3", CourseID: "1", Score: 85, Feedback: &fb,
			CreatedAt: "2024-09-01T08:00:00.000Z", UpdatedAt: "2024-09-01T08:00:00.000Z"},
		{ID: "2", StudentID: "4", CourseID: "9", Score: 61,
			CreatedAt: "2024-09-02T08:00:00.000Z", UpdatedAt: "2024-09-02T08:00:00.000Z"},
	}
}

func asUser(u model.User) context.Context {
	return identity.WithSession(context.Background(), identity.Session{User: u, TokenID: "jti-" + u.ID})
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
