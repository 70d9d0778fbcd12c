package model

// Role 用户角色
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid 判断角色是否为已知取值
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// Privileged admin 与 teacher 可查看全部成绩并执行修改
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleTeacher
}

// User 当前会话用户，会话期间不可变
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Account 用户目录中的账号记录（含密码哈希，不对外输出）
type Account struct {
	User
	PasswordHash string `json:"-" mapstructure:"password_hash"`
}
