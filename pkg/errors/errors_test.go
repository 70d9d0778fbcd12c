package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", NewValidation("score", "必填"), KindValidation},
		{"wrapped validation", fmt.Errorf("create: %w", NewValidation("score", "必填")), KindValidation},
		{"authorization", NewAuthorization("student", "创建成绩"), KindAuthorization},
		{"persistence", NewPersistence("save", io.ErrUnexpectedEOF), KindPersistence},
		{"plain", errors.New("boom"), ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("期望 %q，实际 %q", tc.want, got)
			}
		})
	}
}

func TestPersistenceError_Unwrap(t *testing.T) {
	err := NewPersistence("load", io.ErrUnexpectedEOF)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("应能解包出底层错误")
	}
	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != "load" {
		t.Errorf("期望 Op=load，实际 %+v", pe)
	}
}

func TestNewPersistence_Nil(t *testing.T) {
	if NewPersistence("save", nil) != nil {
		t.Error("底层错误为 nil 时应返回 nil")
	}
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidation("studentId", "不能为空")
	if err.Error() != "studentId: 不能为空" {
		t.Errorf("错误信息不符: %s", err.Error())
	}
}
