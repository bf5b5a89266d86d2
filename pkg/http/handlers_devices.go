package http

import (
	"errors"
	"net/http"
	"strconv"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"airmon.uz/telemetry-service/pkg/auth"
	"airmon.uz/telemetry-service/pkg/common"
	"airmon.uz/telemetry-service/pkg/crud"
	"airmon.uz/telemetry-service/pkg/ingest"
)

type MeasurementRequest struct {
	Data string `json:"data"`
}

var measurementRequestSchema = z.Struct(z.Shape{
	"Data": z.String().Required().Min(1),
})

type DevicePatchRequest struct {
	Lat        *float64 `json:"lat"`
	Long       *float64 `json:"long"`
	Name       *string  `json:"name"`
	SensorType *string  `json:"sensor_type"`
}

var devicePatchSchema = z.Struct(z.Shape{
	"Lat":        z.Ptr(z.Float64()),
	"Long":       z.Ptr(z.Float64()),
	"Name":       z.Ptr(z.String()),
	"SensorType": z.Ptr(z.String()),
})

// PostMeasurement accepts a signed reading from a device. No user
// authentication: the payload signature is the device's credential.
func (rs *RestfulServer) PostMeasurement(c *gin.Context) {
	var req MeasurementRequest
	if err := measurementRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	sess := rs.session()
	defer sess.Close()

	out, err := rs.ingestSvc.Ingest(sess, req.Data)
	if err != nil {
		var validation *ingest.ValidationError
		switch {
		case errors.As(err, &validation):
			c.JSON(http.StatusBadRequest, gin.H{"detail": validation.Issues})
		case errors.Is(err, auth.ErrTokenExpired),
			errors.Is(err, auth.ErrTokenMalformed),
			errors.Is(err, auth.ErrTokenInvalid):
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not decode JWT"})
		default:
			common.GetLoggerWith(common.LoggerNameRestfulServer).
				Error("Failed to record measurement", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, out)
}

func (rs *RestfulServer) ListDevices(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	sess := rs.session()
	defer sess.Close()

	page, err := crud.Devices(sess).PaginatedList(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func (rs *RestfulServer) GetDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	sess := rs.session()
	defer sess.Close()

	device, err := crud.Devices(sess).GetByID(id)
	if err != nil {
		respondCrudError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

func (rs *RestfulServer) PatchDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	var req DevicePatchRequest
	if err := devicePatchSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	sess := rs.session()
	defer sess.Close()

	devices := crud.Devices(sess)
	changes := crud.DeviceChanges{
		Lat:        req.Lat,
		Long:       req.Long,
		Name:       req.Name,
		SensorType: req.SensorType,
	}
	if err := devices.UpdateByID(id, changes.Changes()); err != nil {
		respondCrudError(c, err)
		return
	}
	if err := sess.Checkpoint(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}

	device, err := devices.GetByID(id)
	if err != nil {
		respondCrudError(c, err)
		return
	}
	c.JSON(http.StatusOK, device)
}

// DeleteDevice soft-deletes by default; ?permanently=true removes the
// row for good.
func (rs *RestfulServer) DeleteDevice(c *gin.Context) {
	id, ok := deviceID(c)
	if !ok {
		return
	}

	var opts []crud.QueryOpt
	if c.Query("permanently") == "true" {
		opts = append(opts, crud.Permanently())
	}

	sess := rs.session()
	defer sess.Close()

	if err := crud.Devices(sess).DeleteByID(id, opts...); err != nil {
		respondCrudError(c, err)
		return
	}
	if err := sess.Checkpoint(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (rs *RestfulServer) ListMeasurements(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	var opts []crud.QueryOpt
	if raw := c.Query("device_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid device_id"})
			return
		}
		opts = append(opts, crud.WithFilter("device_id = ?", id))
	}

	sess := rs.session()
	defer sess.Close()

	page, err := crud.Measurements(sess).PaginatedList(limit, offset, opts...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, page)
}

func deviceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("device_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Object not found"})
		return uuid.Nil, false
	}
	return id, true
}

func pagination(c *gin.Context) (limit, offset int, ok bool) {
	limit, ok = intQuery(c, "limit", 100)
	if !ok {
		return 0, 0, false
	}
	offset, ok = intQuery(c, "offset", 0)
	if !ok {
		return 0, 0, false
	}
	return limit, offset, true
}

func intQuery(c *gin.Context, key string, fallback int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid " + key})
		return 0, false
	}
	return v, true
}

func respondCrudError(c *gin.Context, err error) {
	if errors.Is(err, crud.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Object not found"})
		return
	}
	common.GetLoggerWith(common.LoggerNameRestfulServer).
		Error("Storage operation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
}
