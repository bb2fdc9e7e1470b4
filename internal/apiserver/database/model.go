package database

import "time"

// TenantAccount is a fleet-owner account in the control database. Each
// account owns one isolated tenant database; PasswordHash authenticates the
// owner at login while EncryptedPassword is the reversible ciphertext of
// the tenant database password, decrypted by the credential vault when a
// connection must be opened.
type TenantAccount struct {
	ID                uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	DatabaseName      string    `json:"databaseName" gorm:"column:db_name;type:varchar(64);not null"`
	DatabaseUser      string    `json:"databaseUser" gorm:"column:db_user;type:varchar(64);uniqueIndex;not null"`
	PasswordHash      string    `json:"-" gorm:"column:db_pass;not null"`
	EncryptedPassword string    `json:"-" gorm:"column:openssl;not null"`
	StorageFolder     string    `json:"storageFolder" gorm:"column:folder;type:varchar(128)"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// TableName keeps the legacy control schema table name.
func (TenantAccount) TableName() string { return "users" }
