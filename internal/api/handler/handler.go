package handler

import "gradebook/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth   *AuthHandler
	Course *CourseHandler
	Grade  *GradeHandler
	Editor *EditorHandler
	Export *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		Course: NewCourseHandler(svc.Course),
		Grade:  NewGradeHandler(svc.Grade),
		Editor: NewEditorHandler(svc.Editor),
		Export: NewExportHandler(svc.Export),
	}
}
