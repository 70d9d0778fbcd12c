package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"gradebook/internal/catalog"
	"gradebook/internal/dto"
	"gradebook/internal/identity"
	"gradebook/internal/model"
	"gradebook/internal/policy"
	"gradebook/internal/store"
	apperrors "gradebook/pkg/errors"
)

// 快照写入失败时返回给调用方的提示
const persistenceWarning = "修改已生效，但未能写入持久化存储，重启后可能丢失"

// errNothingToDelete Mutate 回调内部使用：ID 不存在时跳过写快照
var errNothingToDelete = errors.New("nothing to delete")

// GradeService 成绩业务接口
//
// 所有操作以 identity.Provider 提供的当前用户为准：
//   - 读取：按角色过滤可见成绩
//   - 修改：仅 admin / teacher
//   - 快照写入失败不视为请求失败，响应中 persisted=false
type GradeService interface {
	List(ctx context.Context) (*dto.GradeListResponse, error)
	Get(ctx context.Context, gradeID string) (*dto.GradeResponse, error)
	Create(ctx context.Context, patch model.GradePatch) (*dto.GradeMutationResponse, error)
	Update(ctx context.Context, gradeID string, patch model.GradePatch) (*dto.GradeMutationResponse, error)
	// Save editing 为 nil 时创建，否则以 editing 为基底编辑
	Save(ctx context.Context, editing *model.Grade, patch model.GradePatch) (*dto.GradeMutationResponse, error)
	Delete(ctx context.Context, gradeID string, confirmed bool) (*dto.GradeDeleteResponse, error)
	// Editable 返回当前用户可编辑的成绩
	Editable(ctx context.Context, gradeID string) (*model.Grade, error)
}

type gradeService struct {
	identity identity.Provider
	grades   *store.GradeStore
	catalog  *catalog.Catalog
	mutator  *policy.Mutator
	logger   *zap.Logger
}

// NewGradeService 创建 GradeService 实例
func NewGradeService(
	provider identity.Provider,
	grades *store.GradeStore,
	cat *catalog.Catalog,
	mutator *policy.Mutator,
	logger *zap.Logger,
) GradeService {
	if mutator == nil {
		mutator = policy.NewMutator(nil, nil)
	}
	return &gradeService{
		identity: provider,
		grades:   grades,
		catalog:  cat,
		mutator:  mutator,
		logger:   logger,
	}
}

func (s *gradeService) List(ctx context.Context) (*dto.GradeListResponse, error) {
	user := s.identity.GetCurrentUser(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}

	visible := policy.VisibleGrades(s.grades.Snapshot(), user)
	canEdit := policy.CanCreateOrEdit(user)

	list := make([]dto.GradeResponse, 0, len(visible))
	for _, g := range visible {
		list = append(list, toGradeResponse(g, s.catalog, canEdit))
	}
	return &dto.GradeListResponse{List: list, CanCreate: canEdit}, nil
}

func (s *gradeService) Get(ctx context.Context, gradeID string) (*dto.GradeResponse, error) {
	user := s.identity.GetCurrentUser(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}

	// 不可见与不存在统一返回 NotFound
	for _, g := range policy.VisibleGrades(s.grades.Snapshot(), user) {
		if g.ID == gradeID {
			resp := toGradeResponse(g, s.catalog, policy.CanCreateOrEdit(user))
			return &resp, nil
		}
	}
	return nil, policy.ErrGradeNotFound
}

func (s *gradeService) Create(ctx context.Context, patch model.GradePatch) (*dto.GradeMutationResponse, error) {
	return s.Save(ctx, nil, patch)
}

func (s *gradeService) Update(ctx context.Context, gradeID string, patch model.GradePatch) (*dto.GradeMutationResponse, error) {
	user, err := s.authorize(ctx, "edit")
	if err != nil {
		return nil, err
	}

	var saved model.Grade
	err = s.grades.Mutate(ctx, func(current []model.Grade) ([]model.Grade, error) {
		editing := findGrade(current, gradeID)
		if editing == nil {
			return nil, policy.ErrGradeNotFound
		}
		next, g, err := s.mutator.SaveGrade(current, editing, patch)
		if err != nil {
			return nil, err
		}
		saved = g
		return next, nil
	})
	return s.mutationResult(user, "更新", saved, err)
}

func (s *gradeService) Save(ctx context.Context, editing *model.Grade, patch model.GradePatch) (*dto.GradeMutationResponse, error) {
	action := "create"
	if editing != nil {
		action = "edit"
	}
	user, err := s.authorize(ctx, action)
	if err != nil {
		return nil, err
	}

	var saved model.Grade
	err = s.grades.Mutate(ctx, func(current []model.Grade) ([]model.Grade, error) {
		next, g, err := s.mutator.SaveGrade(current, editing, patch)
		if err != nil {
			return nil, err
		}
		saved = g
		return next, nil
	})

	verb := "创建"
	if editing != nil {
		verb = "更新"
	}
	return s.mutationResult(user, verb, saved, err)
}

func (s *gradeService) Delete(ctx context.Context, gradeID string, confirmed bool) (*dto.GradeDeleteResponse, error) {
	user, err := s.authorize(ctx, "delete")
	if err != nil {
		return nil, err
	}

	err = s.grades.Mutate(ctx, func(current []model.Grade) ([]model.Grade, error) {
		next, err := policy.DeleteGrade(current, gradeID, confirmed)
		if err != nil {
			return nil, err
		}
		if len(next) == len(current) {
			return nil, errNothingToDelete
		}
		return next, nil
	})

	switch {
	case errors.Is(err, errNothingToDelete):
		return &dto.GradeDeleteResponse{Deleted: false, Persisted: true}, nil
	case store.IsPersistenceOnly(err):
		return &dto.GradeDeleteResponse{Deleted: true, Persisted: false, Warning: persistenceWarning}, nil
	case err != nil:
		return nil, err
	}

	s.logger.Info("成绩已删除", zap.String("grade_id", gradeID), zap.String("operator", user.ID))
	return &dto.GradeDeleteResponse{Deleted: true, Persisted: true}, nil
}

func (s *gradeService) Editable(ctx context.Context, gradeID string) (*model.Grade, error) {
	if _, err := s.authorize(ctx, "edit"); err != nil {
		return nil, err
	}
	g, ok := s.grades.Find(gradeID)
	if !ok {
		return nil, policy.ErrGradeNotFound
	}
	return &g, nil
}

// ── 内部辅助 ──

func (s *gradeService) authorize(ctx context.Context, action string) (*model.User, error) {
	user := s.identity.GetCurrentUser(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if !policy.CanCreateOrEdit(user) {
		return nil, apperrors.NewAuthorization(string(user.Role), action)
	}
	return user, nil
}

func (s *gradeService) mutationResult(user *model.User, verb string, saved model.Grade, err error) (*dto.GradeMutationResponse, error) {
	resp := &dto.GradeMutationResponse{Persisted: true}
	switch {
	case store.IsPersistenceOnly(err):
		resp.Persisted = false
		resp.Warning = persistenceWarning
	case err != nil:
		return nil, err
	}

	resp.Grade = toGradeResponse(saved, s.catalog, true)
	s.logger.Info("成绩已"+verb,
		zap.String("grade_id", saved.ID),
		zap.String("operator", user.ID),
		zap.Bool("persisted", resp.Persisted),
	)
	return resp, nil
}

func findGrade(grades []model.Grade, id string) *model.Grade {
	for i := range grades {
		if grades[i].ID == id {
			g := grades[i].Clone()
			return &g
		}
	}
	return nil
}

func toGradeResponse(g model.Grade, cat *catalog.Catalog, canEdit bool) dto.GradeResponse {
	return dto.GradeResponse{
		ID:         g.ID,
		StudentID:  g.StudentID,
		CourseID:   g.CourseID,
		CourseName: cat.CourseName(g.CourseID),
		Score:      g.Score,
		ScoreBand:  model.ScoreBand(g.Score),
		Feedback:   g.Feedback,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
		CanEdit:    canEdit,
	}
}
