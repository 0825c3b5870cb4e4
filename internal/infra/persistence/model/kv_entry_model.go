package model

import "time"

// KVEntryModel mirrors the 'kv_entries' table: one row per storage key.
type KVEntryModel struct {
	Key       string `gorm:"column:entry_key;type:varchar(64);primaryKey"`
	Value     string `gorm:"column:entry_value;type:text;not null"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (KVEntryModel) TableName() string {
	return "kv_entries"
}
