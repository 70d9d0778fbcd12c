package service

import (
	"errors"

	"go.uber.org/zap"

	"gradebook/internal/catalog"
	"gradebook/internal/identity"
	"gradebook/internal/policy"
	"gradebook/internal/store"
	"gradebook/pkg/jwt"
)

// ErrUnauthenticated 上下文中没有当前用户
var ErrUnauthenticated = errors.New("未认证")

// Deps Service 层依赖
type Deps struct {
	Directory *identity.Directory
	Identity  *identity.SessionProvider
	JWT       *jwt.Manager
	Grades    *store.GradeStore
	Catalog   *catalog.Catalog
	Mutator   *policy.Mutator
	Logger    *zap.Logger
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth   AuthService
	Course CourseService
	Grade  GradeService
	Editor EditorService
	Export ExportService
}

// NewService 创建 Service 聚合
// 编辑器会在用户登出时自动关闭
func NewService(d Deps) *Service {
	grade := NewGradeService(d.Identity, d.Grades, d.Catalog, d.Mutator, d.Logger)
	editor := NewEditorService(d.Identity, grade, d.Catalog, d.Logger)
	d.Identity.OnLogout(editor.Close)

	return &Service{
		Auth:   NewAuthService(d.Directory, d.Identity, d.JWT, d.Logger),
		Course: NewCourseService(d.Catalog),
		Grade:  grade,
		Editor: editor,
		Export: NewExportService(d.Identity, d.Grades, d.Catalog, d.Logger),
	}
}
