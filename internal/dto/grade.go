package dto

import "gradebook/internal/model"

// ── 成绩模块 DTO ──

// SaveGradeRequest 创建 / 编辑成绩请求
// 所有字段可选；创建时 student_id、course_id、score 由业务层校验必填
type SaveGradeRequest struct {
	StudentID *string  `json:"student_id" binding:"omitempty,max=64"`
	CourseID  *string  `json:"course_id"  binding:"omitempty,max=64"`
	Score     *float64 `json:"score"`
	Feedback  *string  `json:"feedback"   binding:"omitempty,max=2000"`
}

// ToPatch 转换为领域补丁
func (r *SaveGradeRequest) ToPatch() model.GradePatch {
	return model.GradePatch{
		StudentID: r.StudentID,
		CourseID:  r.CourseID,
		Score:     r.Score,
		Feedback:  r.Feedback,
	}
}

// DeleteGradeRequest 删除成绩查询参数
type DeleteGradeRequest struct {
	Confirm bool `form:"confirm"`
}

// GradeResponse 成绩行
type GradeResponse struct {
	ID         string  `json:"id"`
	StudentID  string  `json:"student_id"`
	CourseID   string  `json:"course_id"`
	CourseName string  `json:"course_name"`
	Score      float64 `json:"score"`
	ScoreBand  string  `json:"score_band"` // excellent | good | fair | poor
	Feedback   *string `json:"feedback,omitempty"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
	CanEdit    bool    `json:"can_edit"`
}

// GradeListResponse 成绩列表
type GradeListResponse struct {
	List      []GradeResponse `json:"list"`
	CanCreate bool            `json:"can_create"`
}

// GradeMutationResponse 创建 / 编辑结果
// Persisted=false 表示修改已生效但快照写入失败
type GradeMutationResponse struct {
	Grade     GradeResponse `json:"grade"`
	Persisted bool          `json:"persisted"`
	Warning   string        `json:"warning,omitempty"`
}

// GradeDeleteResponse 删除结果
type GradeDeleteResponse struct {
	Deleted   bool   `json:"deleted"` // ID 不存在时为 false
	Persisted bool   `json:"persisted"`
	Warning   string `json:"warning,omitempty"`
}
