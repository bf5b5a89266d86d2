package db

import (
	"log"
	"strings"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"airmon.uz/telemetry-service/pkg/common"
	"airmon.uz/telemetry-service/pkg/models"
)

type DB struct {
	Conn *gorm.DB
}

var (
	instance *DB
	once     sync.Once
)

// New opens a connection, retrying with exponential backoff so the server
// survives the database coming up after it, and runs migrations.
func New(dialector gorm.Dialector) (*DB, error) {
	logger := common.GetLogger()

	var conn *gorm.DB
	connect := func() error {
		var err error
		// TranslateError surfaces driver constraint violations as
		// gorm.ErrDuplicatedKey and friends
		conn, err = gorm.Open(dialector, &gorm.Config{TranslateError: true})
		return err
	}
	if err := backoff.Retry(connect, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 8)); err != nil {
		return nil, err
	}

	logger.Info("Connected to database with dialector:", zap.String("dialector", dialector.Name()))

	if err := conn.AutoMigrate(&models.User{}, &models.Device{}, &models.Measurement{}); err != nil {
		return nil, err
	}

	logger.Info("Database migration completed")

	if dialector.Name() == "sqlite" {
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
		if err := conn.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
			return nil, err
		}
	}

	return &DB{Conn: conn}, nil
}

func GetInstance(dialector gorm.Dialector) *DB {
	once.Do(func() {
		var err error
		instance, err = New(dialector)
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}
	})
	return instance
}

// DialectorFromURL picks the driver from the connection string: postgres
// URLs go to the postgres driver, anything else is treated as a sqlite
// path. An empty URL falls back to a local sqlite file.
func DialectorFromURL(databaseURL string) gorm.Dialector {
	switch {
	case databaseURL == "":
		return sqlite.Open("telemetry.db")
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgres.Open(databaseURL)
	default:
		return sqlite.Open(databaseURL)
	}
}

func UseMemorySqliteDialector() gorm.Dialector {
	return sqlite.Open("file::memory:?cache=shared")
}

// UseEphemeralSqliteDialector returns a fresh named in-memory database,
// isolated from every other test. cache=shared keeps the pool's
// connections on the same database.
func UseEphemeralSqliteDialector() gorm.Dialector {
	return sqlite.Open("file:" + uuid.NewString() + "?mode=memory&cache=shared")
}
