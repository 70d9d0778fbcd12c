// Package errors 定义跨层共享的错误分类。
//
// 所有分类错误均不致命：
//   - ValidationError    字段缺失或越界，操作中止，存储不变
//   - PersistenceError   快照读写失败，内存状态在本次会话内仍然有效
//   - AuthorizationError 无权限角色尝试修改，操作被拒绝，无任何副作用
package errors

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind string

const (
	KindValidation    Kind = "validation"
	KindPersistence   Kind = "persistence"
	KindAuthorization Kind = "authorization"
)

// 分类哨兵：errors.Is(err, ErrValidation) 可判断任一校验错误
var (
	ErrValidation    = errors.New("参数校验失败")
	ErrPersistence   = errors.New("持久化失败")
	ErrAuthorization = errors.New("无权限执行该操作")
)

// ValidationError 字段校验错误
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is 使 errors.Is(err, ErrValidation) 成立
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidation 创建校验错误
func NewValidation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError 存储读写错误
type PersistenceError struct {
	Op  string // load | save
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("持久化失败 (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// NewPersistence 包装底层存储错误；err 为 nil 时返回 nil
func NewPersistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// AuthorizationError 授权错误
type AuthorizationError struct {
	Role   string
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("角色 %q 无权执行 %s", e.Role, e.Action)
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrAuthorization }

// NewAuthorization 创建授权错误
func NewAuthorization(role, action string) error {
	return &AuthorizationError{Role: role, Action: action}
}

// KindOf 返回错误所属分类，未分类错误返回空字符串
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAuthorization):
		return KindAuthorization
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	default:
		return ""
	}
}
