package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"gradebook/internal/catalog"
	"gradebook/internal/dto"
	"gradebook/internal/editor"
	"gradebook/internal/identity"
	"gradebook/internal/model"
	"gradebook/internal/policy"
	apperrors "gradebook/pkg/errors"
)

// EditorService 每个登录用户一个编辑器
//
// 编辑器只保存在进程内，登出时自动关闭。
// 保存失败（校验错误）时编辑器保持打开，调用方可修正后再次保存。
type EditorService interface {
	Get(ctx context.Context) (*dto.EditorResponse, error)
	Add(ctx context.Context) (*dto.EditorResponse, error)
	Edit(ctx context.Context, gradeID string) (*dto.EditorResponse, error)
	Save(ctx context.Context, patch model.GradePatch) (*dto.EditorSaveResponse, error)
	Cancel(ctx context.Context) (*dto.EditorResponse, error)
	// Close 丢弃用户的编辑器（登出回调）
	Close(userID string)
}

type editorSession struct {
	mu sync.Mutex
	ed *editor.Editor
}

type editorService struct {
	identity identity.Provider
	grades   GradeService
	catalog  *catalog.Catalog
	logger   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*editorSession
}

// NewEditorService 创建 EditorService 实例
func NewEditorService(provider identity.Provider, grades GradeService, cat *catalog.Catalog, logger *zap.Logger) EditorService {
	return &editorService{
		identity: provider,
		grades:   grades,
		catalog:  cat,
		logger:   logger,
		sessions: make(map[string]*editorSession),
	}
}

func (s *editorService) Get(ctx context.Context) (*dto.EditorResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.describe(sess.ed), nil
}

func (s *editorService) Add(ctx context.Context) (*dto.EditorResponse, error) {
	user := s.identity.GetCurrentUser(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if !policy.CanCreateOrEdit(user) {
		return nil, apperrors.NewAuthorization(string(user.Role), "create")
	}

	sess := s.sessionFor(user.ID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.ed.Add(); err != nil {
		return nil, err
	}
	return s.describe(sess.ed), nil
}

func (s *editorService) Edit(ctx context.Context, gradeID string) (*dto.EditorResponse, error) {
	g, err := s.grades.Editable(ctx, gradeID)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.ed.Edit(*g)
	return s.describe(sess.ed), nil
}

func (s *editorService) Save(ctx context.Context, patch model.GradePatch) (*dto.EditorSaveResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if !sess.ed.IsOpen() {
		return nil, editor.ErrNotOpen
	}

	result, err := s.grades.Save(ctx, sess.ed.Editing(), patch)
	if err != nil {
		// 被编辑的成绩已被删除，编辑无法再完成
		if errors.Is(err, policy.ErrGradeNotFound) {
			sess.ed.Cancel()
		}
		return nil, err
	}

	if err := sess.ed.Complete(); err != nil {
		return nil, err
	}
	return &dto.EditorSaveResponse{
		GradeMutationResponse: *result,
		Editor:                *s.describe(sess.ed),
	}, nil
}

func (s *editorService) Cancel(ctx context.Context) (*dto.EditorResponse, error) {
	sess, err := s.session(ctx)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.ed.Cancel()
	return s.describe(sess.ed), nil
}

func (s *editorService) Close(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[userID]; ok {
		delete(s.sessions, userID)
		s.logger.Debug("编辑器已关闭", zap.String("user_id", userID))
	}
}

// ── 内部辅助 ──

func (s *editorService) session(ctx context.Context) (*editorSession, error) {
	user := s.identity.GetCurrentUser(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return s.sessionFor(user.ID), nil
}

func (s *editorService) sessionFor(userID string) *editorSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &editorSession{ed: editor.New()}
		s.sessions[userID] = sess
	}
	return sess
}

func (s *editorService) describe(ed *editor.Editor) *dto.EditorResponse {
	resp := &dto.EditorResponse{State: string(ed.State()), GradeID: ed.GradeID()}
	if g := ed.Editing(); g != nil {
		gr := toGradeResponse(*g, s.catalog, true)
		resp.Editing = &gr
	}
	return resp
}
