package crud

import (
	"time"

	"github.com/google/uuid"

	"airmon.uz/telemetry-service/pkg/models"
)

// MeasurementOut is the list-item and single-read projection for
// measurements; lifecycle columns beyond id are not exposed.
type MeasurementOut struct {
	ID       uuid.UUID `json:"id"`
	DeviceID uuid.UUID `json:"device_id"`

	PM1  *float64   `gorm:"column:pm1" json:"pm1"`
	PM25 *float64   `gorm:"column:pm2_5" json:"pm2_5"`
	PM10 *float64   `gorm:"column:pm10" json:"pm10"`
	Time *time.Time `gorm:"column:time_" json:"time_"`
}

var measurementColumns = []string{
	"id", "device_id", "pm1", "pm2_5", "pm10", "time_",
}

type MeasurementsCrud struct {
	*Crud[models.Measurement, MeasurementOut]
}

func Measurements(s *Session) *MeasurementsCrud {
	return &MeasurementsCrud{New[models.Measurement, MeasurementOut](s, Spec{
		DefaultOrder: "created_at DESC",
		Columns:      measurementColumns,
	})}
}
