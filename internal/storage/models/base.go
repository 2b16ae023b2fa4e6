// internal/storage/models/base.go
package models

import "time"

// BaseModel holds bookkeeping columns shared by journal rows.
type BaseModel struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}
