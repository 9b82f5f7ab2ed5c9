package model

import (
	"encoding/json"
	"time"
)

// CachedPackage 离线缓存中的整包快照，按史诗ID一行，last-write-wins
type CachedPackage struct {
	EpicID   string          `gorm:"primaryKey;type:varchar(64)" json:"epic_id"`
	Payload  json.RawMessage `gorm:"type:blob" json:"payload"`
	StoredAt time.Time       `gorm:"index" json:"stored_at"`
}

func (CachedPackage) TableName() string {
	return "cached_packages"
}

// CachedEpicList 最后一次成功获取的完整史诗列表（整表替换语义，单行）
type CachedEpicList struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	Payload  json.RawMessage `gorm:"type:blob" json:"payload"`
	StoredAt time.Time       `json:"stored_at"`
}

func (CachedEpicList) TableName() string {
	return "cached_epic_list"
}

// SyncMeta 键值型同步元数据，目前只有 last_sync
type SyncMeta struct {
	Key   string `gorm:"primaryKey;type:varchar(64)" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}

func (SyncMeta) TableName() string {
	return "sync_meta"
}
