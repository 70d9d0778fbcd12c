package dto

// EditorResponse 编辑器状态
type EditorResponse struct {
	State   string         `json:"state"` // closed | open_for_create | open_for_edit
	GradeID string         `json:"grade_id,omitempty"`
	Editing *GradeResponse `json:"editing,omitempty"`
}

// EditorSaveResponse 编辑器保存结果
type EditorSaveResponse struct {
	GradeMutationResponse
	Editor EditorResponse `json:"editor"`
}
