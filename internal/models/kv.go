package models

import "time"

// KVRecord is the row shape backing the SQL-based persistence stores. One row
// per domain key; the value column holds the JSON blob verbatim.
type KVRecord struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name used by all GORM-backed stores.
func (KVRecord) TableName() string {
	return "kv_records"
}
