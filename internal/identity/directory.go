// Package identity 身份提供方：用户目录、请求上下文中的当前用户与登出。
package identity

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"gradebook/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
)

// Directory 只读用户目录
type Directory struct {
	byID    map[string]model.Account
	byEmail map[string]model.Account
}

// NewDirectory 构建目录；ID 与邮箱（忽略大小写）必须唯一，角色必须合法
func NewDirectory(accounts []model.Account) (*Directory, error) {
	d := &Directory{
		byID:    make(map[string]model.Account, len(accounts)),
		byEmail: make(map[string]model.Account, len(accounts)),
	}
	for _, a := range accounts {
		if a.ID == "" {
			return nil, fmt.Errorf("用户 %q 缺少 id", a.Email)
		}
		if !a.Role.Valid() {
			return nil, fmt.Errorf("用户 %s 的角色 %q 无效", a.ID, a.Role)
		}
		email := normalizeEmail(a.Email)
		if _, dup := d.byID[a.ID]; dup {
			return nil, fmt.Errorf("重复的用户 id %s", a.ID)
		}
		if _, dup := d.byEmail[email]; dup {
			return nil, fmt.Errorf("重复的用户邮箱 %s", a.Email)
		}
		d.byID[a.ID] = a
		d.byEmail[email] = a
	}
	return d, nil
}

// Authenticate 校验邮箱与密码，成功时返回用户
func (d *Directory) Authenticate(email, password string) (*model.User, error) {
	a, ok := d.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	u := a.User
	return &u, nil
}

// Get 按 ID 查找用户
func (d *Directory) Get(id string) (*model.User, error) {
	a, ok := d.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := a.User
	return &u, nil
}

// DemoAccounts 演示账号：admin(1) / teacher(2) / student(3)，共用同一密码
func DemoAccounts(password string) ([]model.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("生成密码哈希失败: %w", err)
	}
	h := string(hash)
	return []model.Account{
		{User: model.User{ID: "1", Name: "Admin User", Email: "admin@example.com", Role: model.RoleAdmin}, PasswordHash: h},
		{User: model.User{ID: "2", Name: "Teacher User", Email: "teacher@example.com", Role: model.RoleTeacher}, PasswordHash: h},
		{User: model.User{ID: "3", Name: "Student User", Email: "student@example.com", Role: model.RoleStudent}, PasswordHash: h},
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
