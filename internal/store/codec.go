package store

import (
	"encoding/json"
	"fmt"

	"gradebook/internal/model"
)

// EncodeGrades 将成绩集合编码为 JSON 数组，保持顺序
// nil 集合编码为 []，与空集合一致
func EncodeGrades(grades []model.Grade) ([]byte, error) {
	if grades == nil {
		grades = []model.Grade{}
	}
	return json.Marshal(grades)
}

// DecodeGrades 解码快照并校验基本不变量：
// 每条记录必须有 ID，ID 在集合内唯一
func DecodeGrades(data []byte) ([]model.Grade, error) {
	// Unmarshal 要求整个快照是单个 JSON 值，尾部多余内容视为损坏
	var grades []model.Grade
	if err := json.Unmarshal(data, &grades); err != nil {
		return nil, fmt.Errorf("快照格式错误: %w", err)
	}
	if grades == nil {
		// JSON null
		grades = []model.Grade{}
	}

	seen := make(map[string]struct{}, len(grades))
	for i, g := range grades {
		if g.ID == "" {
			return nil, fmt.Errorf("快照第 %d 条记录缺少 id", i)
		}
		if _, dup := seen[g.ID]; dup {
			return nil, fmt.Errorf("快照中存在重复 id %q", g.ID)
		}
		seen[g.ID] = struct{}{}
	}
	return grades, nil
}
