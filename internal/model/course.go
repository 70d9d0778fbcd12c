package model

// UnknownCourseName 课程查找失败时的展示名称
const UnknownCourseName = "Unknown Course"

// Course 课程参考数据（只读）
type Course struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeacherID string `json:"teacherId"`
	Semester  string `json:"semester"`
	Year      int    `json:"year"`
}
