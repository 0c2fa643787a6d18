package model

import (
	"time"

	"gorm.io/datatypes"
)

// User is the profile record for an identity provider subject. The Id is the
// IdP's stable subject id, so profiles are created lazily on first verified
// request rather than at registration.
type User struct {
	Id            string `gorm:"primaryKey"`
	Email         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ProfileImages datatypes.JSON
}
