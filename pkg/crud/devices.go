package crud

import (
	"time"

	"github.com/google/uuid"

	"airmon.uz/telemetry-service/pkg/models"
)

// DeviceOut is the output projection exposed for devices.
type DeviceOut struct {
	ID         uuid.UUID  `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt *time.Time `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at"`

	Lat        *float64 `json:"lat"`
	Long       *float64 `gorm:"column:long" json:"long"`
	SensorType *string  `json:"sensor_type"`
	Name       *string  `json:"name"`
	UID        string   `gorm:"column:uid" json:"uid"`
}

var deviceColumns = []string{
	"id", "created_at", "modified_at", "deleted_at",
	"lat", "long", "sensor_type", "name", "uid",
}

type DevicesCrud struct {
	*Crud[models.Device, DeviceOut]
}

func Devices(s *Session) *DevicesCrud {
	return &DevicesCrud{New[models.Device, DeviceOut](s, Spec{
		DefaultOrder: "created_at DESC",
		Columns:      deviceColumns,
	})}
}

// GetByUID looks up a device by its externally-supplied identifier, with
// the same active-only and not-found policy as GetByID.
func (d *DevicesCrud) GetByUID(uid string, opts ...QueryOpt) (*DeviceOut, error) {
	return d.FindOne(append(opts, WithFilter("uid = ?", uid))...)
}

// DeviceChanges builds the partial-update map for a device; nil fields
// are left untouched.
type DeviceChanges struct {
	Lat        *float64
	Long       *float64
	Name       *string
	SensorType *string
	UID        *string
}

func (ch DeviceChanges) Changes() map[string]any {
	m := map[string]any{}
	if ch.Lat != nil {
		m["lat"] = *ch.Lat
	}
	if ch.Long != nil {
		m["long"] = *ch.Long
	}
	if ch.Name != nil {
		m["name"] = *ch.Name
	}
	if ch.SensorType != nil {
		m["sensor_type"] = *ch.SensorType
	}
	if ch.UID != nil {
		m["uid"] = *ch.UID
	}
	return m
}
