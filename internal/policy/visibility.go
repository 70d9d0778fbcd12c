// Package policy 成绩可见性与修改授权规则。
//
// 本包不做任何 I/O：输入为完整的成绩集合与当前用户，输出为新的集合，
// 调用方负责持久化。
package policy

import "gradebook/internal/model"

// VisibleGrades 返回当前用户可见的成绩，保持原有相对顺序
//   - admin / teacher：全部成绩
//   - student：仅 StudentID 等于自身 ID 的成绩
//   - user 为 nil：空集合
func VisibleGrades(all []model.Grade, user *model.User) []model.Grade {
	if user == nil {
		return []model.Grade{}
	}

	if user.Role.Privileged() {
		out := make([]model.Grade, len(all))
		copy(out, all)
		return out
	}

	out := make([]model.Grade, 0)
	for _, g := range all {
		if g.StudentID == user.ID {
			out = append(out, g)
		}
	}
	return out
}

// CanCreateOrEdit 仅 admin 与 teacher 可以创建、编辑、删除成绩
//
// 注意：teacher 可修改任意课程的成绩，未校验是否为该课程的任课教师。
func CanCreateOrEdit(user *model.User) bool {
	return user != nil && user.Role.Privileged()
}
