package model

import "time"

// TimestampLayout 成绩时间戳格式：UTC、毫秒精度，字典序即时间序
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp 将时间格式化为可排序的字符串时间戳
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp 解析时间戳，兼容 RFC3339 的其它精度
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// Grade 成绩记录
// 序列化字段名与浏览器端 localStorage 中的 grades 快照保持一致
type Grade struct {
	ID        string  `json:"id"`
	StudentID string  `json:"studentId"`
	CourseID  string  `json:"courseId"`
	Score     float64 `json:"score"`
	Feedback  *string `json:"feedback,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// Clone 返回深拷贝（Feedback 指针不共享）
func (g Grade) Clone() Grade {
	if g.Feedback != nil {
		fb := *g.Feedback
		g.Feedback = &fb
	}
	return g
}

// GradePatch 成绩的部分字段覆盖，nil 表示不修改
type GradePatch struct {
	StudentID *string  `json:"studentId,omitempty"`
	CourseID  *string  `json:"courseId,omitempty"`
	Score     *float64 `json:"score,omitempty"`
	Feedback  *string  `json:"feedback,omitempty"`
}

// Empty 判断补丁是否不含任何字段
func (p GradePatch) Empty() bool {
	return p.StudentID == nil && p.CourseID == nil && p.Score == nil && p.Feedback == nil
}

// 分数档位
const (
	BandExcellent = "excellent"
	BandGood      = "good"
	BandFair      = "fair"
	BandPoor      = "poor"
)

// ScoreBand 分数档位：>=90 excellent，>=80 good，>=70 fair，其余 poor
func ScoreBand(score float64) string {
	switch {
	case score >= 90:
		return BandExcellent
	case score >= 80:
		return BandGood
	case score >= 70:
		return BandFair
	default:
		return BandPoor
	}
}
