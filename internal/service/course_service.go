package service

import (
	"context"

	"gradebook/internal/catalog"
	"gradebook/internal/dto"
)

// CourseService 课程参考数据（只读）
type CourseService interface {
	List(ctx context.Context) []dto.CourseResponse
}

type courseService struct {
	catalog *catalog.Catalog
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(c *catalog.Catalog) CourseService {
	return &courseService{catalog: c}
}

func (s *courseService) List(_ context.Context) []dto.CourseResponse {
	courses := s.catalog.Courses()
	result := make([]dto.CourseResponse, 0, len(courses))
	for _, c := range courses {
		result = append(result, dto.CourseResponse{
			ID:        c.ID,
			Name:      c.Name,
			TeacherID: c.TeacherID,
			Semester:  c.Semester,
			Year:      c.Year,
		})
	}
	return result
}
