package handler

import (
	"github.com/gin-gonic/gin"

	"gradebook/internal/service"
	"gradebook/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 课程列表
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	response.OK(c, h.courseSvc.List(c.Request.Context()))
}
