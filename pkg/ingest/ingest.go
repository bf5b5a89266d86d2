// Package ingest turns signed device payloads into device and
// measurement rows: decode, validate, look up or first-seen-register the
// device, then record the reading.
package ingest

import (
	"errors"
	"fmt"
	"time"

	z "github.com/Oudwins/zog"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"airmon.uz/telemetry-service/pkg/auth"
	"airmon.uz/telemetry-service/pkg/common"
	"airmon.uz/telemetry-service/pkg/crud"
	"airmon.uz/telemetry-service/pkg/models"
)

// Reading is the decoded measurement payload. DeviceUID is the device's
// externally-supplied identifier ("device_id" on the wire), everything
// else is optional.
type Reading struct {
	DeviceUID  string
	SensorType *string
	PM1        *float64
	PM25       *float64
	PM10       *float64
	Time       *time.Time
}

var readingSchema = z.Struct(z.Shape{
	"DeviceUID":  z.String().Required().Min(1),
	"SensorType": z.Ptr(z.String()),
	"PM1":        z.Ptr(z.Float64().GTE(0)),
	"PM25":       z.Ptr(z.Float64().GTE(0)),
	"PM10":       z.Ptr(z.Float64().GTE(0)),
	"Time":       z.Ptr(z.Time()),
})

// ValidationError reports a decoded payload that fails schema
// constraints.
type ValidationError struct {
	Issues z.ZogIssueMap
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid measurement payload: %v", e.Issues)
}

// Service verifies and records device-submitted readings. The codec is
// configured with the device-data secret, not the user-token one.
type Service struct {
	codec *auth.Codec
}

func NewService(codec *auth.Codec) *Service {
	return &Service{codec: codec}
}

// Decode verifies the payload signature and validates the claims into a
// Reading. Signature/expiry problems surface as the codec's errors,
// constraint problems as *ValidationError.
func (s *Service) Decode(data string) (*Reading, error) {
	claims, err := s.codec.Decode(data)
	if err != nil {
		return nil, err
	}
	reading := readingFromClaims(claims)
	if issues := readingSchema.Validate(&reading); issues != nil {
		return nil, &ValidationError{Issues: issues}
	}
	return &reading, nil
}

// Ingest processes one signed payload inside the given session: resolve
// the device by uid (registering it on first sight), then create the
// measurement linked to the device's internal id. The reading's
// timestamp is stored timezone-naive.
func (s *Service) Ingest(sess *crud.Session, data string) (*crud.MeasurementOut, error) {
	reading, err := s.Decode(data)
	if err != nil {
		return nil, err
	}

	devices := crud.Devices(sess)

	device, err := devices.GetByUID(reading.DeviceUID)
	if errors.Is(err, crud.ErrNotFound) {
		device, err = s.registerDevice(sess, devices, reading)
	}
	if err != nil {
		return nil, err
	}

	measurement := &models.Measurement{
		DeviceID: device.ID,
		PM1:      reading.PM1,
		PM25:     reading.PM25,
		PM10:     reading.PM10,
	}
	if reading.Time != nil {
		naive := naiveTime(*reading.Time)
		measurement.Time = &naive
	}

	out, err := crud.Measurements(sess).Create(measurement, nil)
	if err != nil {
		return nil, err
	}
	if err := sess.Checkpoint(); err != nil {
		return nil, err
	}
	return out, nil
}

// registerDevice performs first-seen registration. The uid column is
// unique, so a concurrent registration for the same uid makes the insert
// fail on the constraint; we roll back to the savepoint and take the
// winner's row instead. Any other storage failure propagates unmodified.
func (s *Service) registerDevice(sess *crud.Session, devices *crud.DevicesCrud, reading *Reading) (*crud.DeviceOut, error) {
	logger := common.GetLoggerWith(common.LoggerNameIngest)
	logger.Info("Device not found, creating", zap.String("uid", reading.DeviceUID))

	if err := sess.SavePoint("first_seen"); err != nil {
		return nil, err
	}

	device, err := devices.Create(&models.Device{
		UID:        reading.DeviceUID,
		SensorType: reading.SensorType,
	}, nil)
	if err == nil {
		if err := sess.Checkpoint(); err != nil {
			return nil, err
		}
		return device, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	if rbErr := sess.RollbackTo("first_seen"); rbErr != nil {
		return nil, err
	}

	winner, lookupErr := devices.GetByUID(reading.DeviceUID)
	if lookupErr != nil {
		if errors.Is(lookupErr, crud.ErrNotFound) {
			// the uid is held by a soft-deleted row, not a concurrent
			// registration; surface the constraint violation itself
			return nil, err
		}
		return nil, lookupErr
	}
	return winner, nil
}

func readingFromClaims(claims jwt.MapClaims) Reading {
	r := Reading{}
	if v, ok := claims["device_id"].(string); ok {
		r.DeviceUID = v
	}
	if v, ok := claims["sensor_type"].(string); ok {
		r.SensorType = &v
	}
	r.PM1 = floatClaim(claims, "pm1")
	r.PM25 = floatClaim(claims, "pm2_5")
	r.PM10 = floatClaim(claims, "pm10")
	r.Time = timeClaim(claims, "time")
	return r
}

func floatClaim(claims jwt.MapClaims, key string) *float64 {
	if v, ok := claims[key].(float64); ok {
		return &v
	}
	return nil
}

func timeClaim(claims jwt.MapClaims, key string) *time.Time {
	switch v := claims[key].(type) {
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return &t
		}
	case float64:
		t := time.Unix(int64(v), 0).UTC()
		return &t
	}
	return nil
}

// naiveTime drops the zone without converting the wall clock, matching
// how senders expect their timestamps to be stored.
func naiveTime(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()
	return time.Date(year, month, day, hour, minute, sec, t.Nanosecond(), time.UTC)
}
