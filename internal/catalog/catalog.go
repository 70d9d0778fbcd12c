// Package catalog 静态参考数据：课程列表与演示成绩。
package catalog

import (
	"time"

	"gradebook/internal/model"
)

// Catalog 只读课程目录
type Catalog struct {
	courses []model.Course
	byID    map[string]model.Course
}

// New 以给定课程构建目录，保持输入顺序
func New(courses []model.Course) *Catalog {
	c := &Catalog{
		courses: make([]model.Course, len(courses)),
		byID:    make(map[string]model.Course, len(courses)),
	}
	copy(c.courses, courses)
	for _, course := range courses {
		c.byID[course.ID] = course
	}
	return c
}

// Default 演示课程目录
func Default() *Catalog {
	return New(DemoCourses())
}

// Courses 返回全部课程的拷贝
func (c *Catalog) Courses() []model.Course {
	out := make([]model.Course, len(c.courses))
	copy(out, c.courses)
	return out
}

// Lookup 按 ID 查找课程
func (c *Catalog) Lookup(id string) (model.Course, bool) {
	course, ok := c.byID[id]
	return course, ok
}

// CourseName 返回课程名称，找不到时返回 "Unknown Course"
func (c *Catalog) CourseName(id string) string {
	if course, ok := c.byID[id]; ok {
		return course.Name
	}
	return model.UnknownCourseName
}

// DemoCourses 演示课程
func DemoCourses() []model.Course {
	return []model.Course{
		{ID: "1", Name: "Matematicas 101", TeacherID: "2", Semester: "Fall", Year: 2024},
		{ID: "2", Name: "Fisica 101", TeacherID: "2", Semester: "Fall", Year: 2024},
		{ID: "3", Name: "Ciencia computacional 101", TeacherID: "2", Semester: "Fall", Year: 2024},
	}
}

// DemoGrades 存储中没有快照时使用的初始成绩
func DemoGrades(now time.Time) []model.Grade {
	ts := model.FormatTimestamp(now)
	feedback := "Buen desempeño con derivadas!"
	return []model.Grade{
		{
			ID:        "1",
			StudentID: "3",
			CourseID:  "1",
			Score:     85,
			Feedback:  &feedback,
			CreatedAt: ts,
			UpdatedAt: ts,
		},
	}
}
