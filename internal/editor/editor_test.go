package editor

import (
	"errors"
	"testing"

	"gradebook/internal/model"
)

func TestEditor_AddThenComplete(t *testing.T) {
	e := New()
	if e.State() != StateClosed {
		t.Fatalf("初始状态应为 closed，实际 %s", e.State())
	}
	if err := e.Add(); err != nil {
		t.Fatalf("Add 应成功: %v", err)
	}
	if e.State() != StateOpenForCreate || e.Editing() != nil {
		t.Errorf("期望 open_for_create 且无快照，实际 %s", e.State())
	}
	if err := e.Complete(); err != nil {
		t.Fatalf("Complete 应成功: %v", err)
	}
	if e.IsOpen() {
		t.Error("保存后应关闭")
	}
}

func TestEditor_AddWhenOpen(t *testing.T) {
	e := New()
	e.Edit(model.Grade{ID: "1"})
	if err := e.Add(); !errors.Is(err, ErrNotClosed) {
		t.Errorf("期望 ErrNotClosed，实际 %v", err)
	}
	if e.State() != StateOpenForEdit {
		t.Error("失败的转换不应改变状态")
	}
}

func TestEditor_EditFromAnyState(t *testing.T) {
	e := New()
	_ = e.Add()
	e.Edit(model.Grade{ID: "1", Score: 80})
	if e.State() != StateOpenForEdit || e.GradeID() != "1" {
		t.Fatalf("期望 open_for_edit(1)，实际 %s(%s)", e.State(), e.GradeID())
	}
	e.Edit(model.Grade{ID: "2"})
	if e.GradeID() != "2" {
		t.Errorf("再次 edit 应切换到新的成绩，实际 %s", e.GradeID())
	}
}

func TestEditor_SnapshotIsolated(t *testing.T) {
	fb := "ok"
	g := model.Grade{ID: "1", Feedback: &fb}
	e := New()
	e.Edit(g)

	fb = "mutated"
	snap := e.Editing()
	if snap == nil || *snap.Feedback != "ok" {
		t.Error("快照不应随外部修改变化")
	}
	*snap.Feedback = "again"
	if *e.Editing().Feedback != "ok" {
		t.Error("返回的快照不应共享内部状态")
	}
}

func TestEditor_CancelAndCompleteWhenClosed(t *testing.T) {
	e := New()
	e.Cancel()
	if e.State() != StateClosed {
		t.Error("closed 状态下 cancel 应为空操作")
	}
	if err := e.Complete(); !errors.Is(err, ErrNotOpen) {
		t.Errorf("期望 ErrNotOpen，实际 %v", err)
	}

	e.Edit(model.Grade{ID: "1"})
	e.Cancel()
	if e.IsOpen() || e.Editing() != nil {
		t.Error("cancel 后应关闭并清空快照")
	}
}
