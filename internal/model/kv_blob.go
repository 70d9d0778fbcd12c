package model

import "time"

// KVBlob 键值快照表（kv_blobs）
// 用于 postgres 存储驱动，整份成绩快照保存在单行 value 中
type KVBlob struct {
	Key       string    `gorm:"type:varchar(100);primaryKey"              json:"key"`
	Value     []byte    `gorm:"type:bytea;not null"                       json:"-"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"updated_at"`
}

// TableName 指定表名
func (KVBlob) TableName() string { return "kv_blobs" }
