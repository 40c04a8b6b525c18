// AngelaMos | 2026
// entity.go

package setting

import (
	"time"
)

type Setting struct {
	ID        string    `db:"id"         json:"id"`
	Key       string    `db:"key"        json:"key"`
	Value     string    `db:"value"      json:"value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type PutRequest struct {
	Value string `json:"value" validate:"max=10000"`
}
