package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleMaintainer Role = "maintainer"
	RoleUser       Role = "user"
)

// Base carries the identity and lifecycle columns shared by every table.
// ModifiedAt and DeletedAt are plain nullable timestamps: both stay NULL
// until the crud layer stamps them on update and soft delete; active-only
// filtering is handled there too, not by gorm.
type Base struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt *time.Time `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b Base) PrimaryKey() uuid.UUID {
	return b.ID
}

type User struct {
	Base
	Username     string `gorm:"not null;uniqueIndex" json:"username"`
	Email        string `gorm:"not null;default:default@default.com" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null;default:user;check:role IN ('admin','maintainer','user')" json:"role"`
	Disabled     bool   `json:"disabled"`
}

type Device struct {
	Base
	Lat        *float64 `json:"lat"`
	Long       *float64 `gorm:"column:long" json:"long"`
	Name       *string  `json:"name"`
	SensorType *string  `json:"sensor_type"`
	// UID is the externally-supplied identifier carried in measurement
	// payloads, distinct from the internal primary key.
	UID string `gorm:"column:uid;not null;uniqueIndex" json:"uid"`
}

type Measurement struct {
	Base
	PM1  *float64   `gorm:"column:pm1" json:"pm1"`
	PM25 *float64   `gorm:"column:pm2_5" json:"pm2_5"`
	PM10 *float64   `gorm:"column:pm10" json:"pm10"`
	// Time is sender-assigned and stored timezone-naive.
	Time *time.Time `gorm:"column:time_" json:"time_"`

	DeviceID uuid.UUID `gorm:"type:uuid;not null;index" json:"device_id"`
	Device   *Device   `gorm:"foreignKey:DeviceID" json:"-"`
}
