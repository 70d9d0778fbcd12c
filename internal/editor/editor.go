// Package editor 成绩编辑器的状态机。
//
//	Closed ──add──▶ OpenForCreate
//	Closed / Open* ──edit(id)──▶ OpenForEdit(id)
//	Open* ──save / cancel──▶ Closed
//
// 每个会话只有一个编辑器实例。
package editor

import (
	"errors"

	"gradebook/internal/model"
)

// State 编辑器状态
type State string

const (
	StateClosed        State = "closed"
	StateOpenForCreate State = "open_for_create"
	StateOpenForEdit   State = "open_for_edit"
)

var (
	ErrNotClosed = errors.New("编辑器已打开，不能新建")
	ErrNotOpen   = errors.New("编辑器未打开")
)

// Editor 单个会话的编辑器
// OpenForEdit 时保存被编辑成绩的快照，保存时以该快照为合并基底
type Editor struct {
	state   State
	editing *model.Grade
}

// New 创建处于 Closed 状态的编辑器
func New() *Editor {
	return &Editor{state: StateClosed}
}

// State 当前状态
func (e *Editor) State() State { return e.state }

// Editing 返回正在编辑的成绩快照；非 OpenForEdit 状态返回 nil
func (e *Editor) Editing() *model.Grade {
	if e.editing == nil {
		return nil
	}
	g := e.editing.Clone()
	return &g
}

// GradeID 正在编辑的成绩 ID
func (e *Editor) GradeID() string {
	if e.editing == nil {
		return ""
	}
	return e.editing.ID
}

// IsOpen 是否处于任一打开状态
func (e *Editor) IsOpen() bool { return e.state != StateClosed }

// Add Closed → OpenForCreate
func (e *Editor) Add() error {
	if e.state != StateClosed {
		return ErrNotClosed
	}
	e.state = StateOpenForCreate
	e.editing = nil
	return nil
}

// Edit 任意状态 → OpenForEdit(g.ID)
func (e *Editor) Edit(g model.Grade) {
	snapshot := g.Clone()
	e.state = StateOpenForEdit
	e.editing = &snapshot
}

// Complete 保存成功后关闭编辑器
func (e *Editor) Complete() error {
	if e.state == StateClosed {
		return ErrNotOpen
	}
	e.reset()
	return nil
}

// Cancel 取消编辑；已关闭时为空操作
func (e *Editor) Cancel() {
	e.reset()
}

func (e *Editor) reset() {
	e.state = StateClosed
	e.editing = nil
}
