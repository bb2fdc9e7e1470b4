// Package audit appends immutable records of mutating actions to the
// tenant's log table. Every state-changing operation in the gateway writes
// exactly one entry, through the same transaction as the mutation it
// documents, so a committed mutation is never unlogged.
package audit

import (
	"time"

	"gorm.io/gorm"
)

// LogEntry is one audit row. ActorID is the acting fleet manager; the -1
// sentinel marks actions performed by the superadmin or the tenant owner
// outside any fleet-manager identity. Rows are append-only: the gateway
// never updates or deletes them.
type LogEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Time       time.Time `json:"time" gorm:"index;not null"`
	ActorID    int64     `json:"actorId" gorm:"column:fleet_manager_id;not null"`
	Action     string    `json:"action" gorm:"type:varchar(64);not null"`
	Details    string    `json:"details" gorm:"type:text"`
	ClientAddr string    `json:"clientAddr" gorm:"column:ip_address;type:varchar(45)"`
}

// TableName keeps the legacy tenant schema table name.
func (LogEntry) TableName() string { return "logs" }

// Record appends one entry on the given handle. Callers pass the
// transaction the mutation runs in; the timestamp is set server-side.
func Record(tx *gorm.DB, actorID int64, action, details, clientAddr string) error {
	entry := &LogEntry{
		Time:       time.Now(),
		ActorID:    actorID,
		Action:     action,
		Details:    details,
		ClientAddr: clientAddr,
	}
	return tx.Create(entry).Error
}
