package dto

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeacherID string `json:"teacher_id"`
	Semester  string `json:"semester"`
	Year      int    `json:"year"`
}
