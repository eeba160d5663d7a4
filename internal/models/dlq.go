package models

import "time"

// DLQ holds outbox events that ran out of attempts. Retries counts failed
// replays; terminal rows are never replayed again.
type DLQ struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OutboxID   int64      `gorm:"index" json:"outboxId"`
	Kind       string     `json:"kind"`
	EntityType string     `json:"entityType"`
	EntityID   string     `json:"entityId"`
	Op         string     `json:"op"`
	ErrorMsg   string     `json:"errorMsg"`
	Payload    []byte     `gorm:"type:bytea" json:"-"`
	Attempts   int        `json:"attempts"`
	Retries    int        `gorm:"not null;default:0" json:"retries"`
	Terminal   bool       `gorm:"not null;default:false;index" json:"terminal"`
	CreatedAt  time.Time  `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
	RetriedAt  *time.Time `json:"retriedAt,omitempty"`
	Resolved   bool       `gorm:"default:false" json:"resolved"`
}
