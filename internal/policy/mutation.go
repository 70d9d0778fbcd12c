package policy

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"gradebook/internal/model"
	apperrors "gradebook/pkg/errors"
)

// ── 成绩修改业务错误 ──

var (
	// ErrMissingRequiredField 创建成绩时缺少 studentId / courseId / score
	ErrMissingRequiredField = apperrors.NewValidation("", "缺少必填字段")
	// ErrConfirmationRequired 删除操作未经调用方确认
	ErrConfirmationRequired = apperrors.NewValidation("confirm", "删除操作需要确认")
	// ErrGradeNotFound 编辑的成绩已不在集合中
	ErrGradeNotFound = errors.New("成绩不存在")
	// ErrIDExhausted ID 生成器连续产生重复 ID
	ErrIDExhausted = errors.New("无法生成唯一的成绩 ID")
)

// 分数合法区间
const (
	MinScore = 0
	MaxScore = 100
)

const maxIDAttempts = 8

// Mutator 负责成绩的创建、编辑与删除
// 时钟与 ID 生成器可注入，便于测试得到确定结果
type Mutator struct {
	now   func() time.Time
	newID func() string
}

// NewMutator 创建 Mutator；参数为 nil 时分别使用 time.Now 与 uuid
func NewMutator(now func() time.Time, newID func() string) *Mutator {
	if now == nil {
		now = time.Now
	}
	if newID == nil {
		newID = uuid.NewString
	}
	return &Mutator{now: now, newID: newID}
}

// SaveGrade 保存成绩
//
// editing 非 nil 时为编辑：以 editing 为底、patch 覆盖、再写入新的 UpdatedAt，
// 替换集合中 ID 相同的记录，其余记录与顺序不变。
// editing 为 nil 时为创建：studentId / courseId / score 必填，
// 生成新 ID，CreatedAt 与 UpdatedAt 取当前时间，追加到集合末尾。
//
// 入参集合不会被修改。返回新集合与被保存的记录。
func (m *Mutator) SaveGrade(existing []model.Grade, editing *model.Grade, patch model.GradePatch) ([]model.Grade, model.Grade, error) {
	if err := ValidatePatch(patch); err != nil {
		return existing, model.Grade{}, err
	}

	if editing != nil {
		return m.update(existing, editing, patch)
	}
	return m.create(existing, patch)
}

func (m *Mutator) update(existing []model.Grade, editing *model.Grade, patch model.GradePatch) ([]model.Grade, model.Grade, error) {
	idx := indexOf(existing, editing.ID)
	if idx < 0 {
		return existing, model.Grade{}, ErrGradeNotFound
	}

	merged := applyPatch(editing.Clone(), patch)
	merged.UpdatedAt = m.stamp(merged.CreatedAt)

	out := make([]model.Grade, len(existing))
	copy(out, existing)
	out[idx] = merged
	return out, merged, nil
}

func (m *Mutator) create(existing []model.Grade, patch model.GradePatch) ([]model.Grade, model.Grade, error) {
	if err := requireCreateFields(patch); err != nil {
		return existing, model.Grade{}, err
	}

	id, err := m.uniqueID(existing)
	if err != nil {
		return existing, model.Grade{}, err
	}

	now := model.FormatTimestamp(m.now())
	g := model.Grade{
		ID:        id,
		StudentID: strings.TrimSpace(*patch.StudentID),
		CourseID:  strings.TrimSpace(*patch.CourseID),
		Score:     *patch.Score,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if patch.Feedback != nil {
		fb := *patch.Feedback
		g.Feedback = &fb
	}

	out := make([]model.Grade, 0, len(existing)+1)
	out = append(out, existing...)
	out = append(out, g)
	return out, g, nil
}

// DeleteGrade 删除指定 ID 的成绩
// confirmed 为 false 时拒绝执行；ID 不存在时原样返回，不视为错误。
func DeleteGrade(existing []model.Grade, gradeID string, confirmed bool) ([]model.Grade, error) {
	if !confirmed {
		return existing, ErrConfirmationRequired
	}

	out := make([]model.Grade, 0, len(existing))
	for _, g := range existing {
		if g.ID != gradeID {
			out = append(out, g)
		}
	}
	return out, nil
}

// ValidatePatch 在合并前校验补丁中出现的字段
func ValidatePatch(p model.GradePatch) error {
	if p.StudentID != nil && strings.TrimSpace(*p.StudentID) == "" {
		return apperrors.NewValidation("studentId", "不能为空")
	}
	if p.CourseID != nil && strings.TrimSpace(*p.CourseID) == "" {
		return apperrors.NewValidation("courseId", "不能为空")
	}
	if p.Score != nil {
		s := *p.Score
		if math.IsNaN(s) || math.IsInf(s, 0) || s < MinScore || s > MaxScore {
			return apperrors.NewValidation("score", "必须在 0-100 之间")
		}
	}
	return nil
}

func requireCreateFields(p model.GradePatch) error {
	var missing []string
	if p.StudentID == nil {
		missing = append(missing, "studentId")
	}
	if p.CourseID == nil {
		missing = append(missing, "courseId")
	}
	if p.Score == nil {
		missing = append(missing, "score")
	}
	if len(missing) > 0 {
		return &missingFieldError{fields: missing}
	}
	return nil
}

// missingFieldError 同时满足 errors.Is(err, ErrMissingRequiredField)
// 与 errors.Is(err, apperrors.ErrValidation)
type missingFieldError struct {
	fields []string
}

func (e *missingFieldError) Error() string {
	return "缺少必填字段: " + strings.Join(e.fields, ", ")
}

func (e *missingFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField || target == apperrors.ErrValidation
}

// Fields 返回缺失的字段名
func (e *missingFieldError) Fields() []string { return e.fields }

func applyPatch(g model.Grade, p model.GradePatch) model.Grade {
	if p.StudentID != nil {
		g.StudentID = strings.TrimSpace(*p.StudentID)
	}
	if p.CourseID != nil {
		g.CourseID = strings.TrimSpace(*p.CourseID)
	}
	if p.Score != nil {
		g.Score = *p.Score
	}
	if p.Feedback != nil {
		fb := *p.Feedback
		g.Feedback = &fb
	}
	return g
}

// stamp 生成新的 UpdatedAt，保证不早于 createdAt
func (m *Mutator) stamp(createdAt string) string {
	now := m.now()
	if created, err := model.ParseTimestamp(createdAt); err == nil && now.Before(created) {
		now = created
	}
	return model.FormatTimestamp(now)
}

func (m *Mutator) uniqueID(existing []model.Grade) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := m.newID()
		if id != "" && indexOf(existing, id) < 0 {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}

func indexOf(grades []model.Grade, id string) int {
	for i := range grades {
		if grades[i].ID == id {
			return i
		}
	}
	return -1
}
