package db

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/soundstall-backend/pkg/config"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
)

type pressing struct {
	ID      int
	Catalog string `gorm:"uniqueIndex"`
}

func openMemory(t *testing.T, name string, cfg *gorm.Config) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), cfg)
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&pressing{}))
	return conn
}

func TestNewOpensSQLiteAndAppliesPool(t *testing.T) {
	client, err := New(context.Background(), config.DBConfig{
		Driver:         config.DBDriverSQLite,
		DSN:            "file:client_new?mode=memory&cache=shared",
		MaxOpenConns:   3,
		ConnectTimeout: time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(context.Background()))
	assert.Equal(t, 3, client.Stats().MaxOpenConnections)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{Driver: config.DBDriverSQLite}, nil)
	require.Error(t, err)

	_, err = New(context.Background(), config.DBConfig{Driver: "oracle", DSN: "x"}, nil)
	require.ErrorContains(t, err, "unsupported database driver")
}

func TestDialectorFor(t *testing.T) {
	d, err := dialectorFor(config.DBConfig{Driver: config.DBDriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = dialectorFor(config.DBConfig{DSN: "postgres://localhost/soundstall"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}

func TestIsUniqueViolationSQLite(t *testing.T) {
	conn := openMemory(t, "unique_test", &gorm.Config{})

	require.NoError(t, conn.Create(&pressing{Catalog: "SS-001"}).Error)
	err := conn.Create(&pressing{Catalog: "SS-001"}).Error

	assert.True(t, IsUniqueViolation(err, ""), "got %v", err)
	assert.True(t, IsUniqueViolation(err, "pressings.catalog"))
	assert.False(t, IsUniqueViolation(err, "pressings.id"))
	assert.False(t, IsUniqueViolation(errors.New("connection reset"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}

func TestQueryLoggerReportsSlowAndFailedStatements(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	conn := openMemory(t, "query_logger", &gorm.Config{Logger: newQueryLogger(logg, time.Nanosecond)})
	buf.Reset()

	var row pressing
	err := conn.First(&row, "catalog = ?", "missing").Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Contains(t, buf.String(), "db.query.slow")
	assert.NotContains(t, buf.String(), "db.query.failed")

	buf.Reset()
	_ = conn.Exec("SELECT * FROM no_such_table").Error
	assert.Contains(t, buf.String(), "db.query.failed")
	assert.Contains(t, buf.String(), "no_such_table")
}

func TestQueryLoggerQuietForFastStatements(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf})
	conn := openMemory(t, "query_quiet", &gorm.Config{Logger: newQueryLogger(logg, time.Hour)})
	buf.Reset()

	require.NoError(t, conn.Create(&pressing{Catalog: "SS-002"}).Error)
	assert.Empty(t, strings.TrimSpace(buf.String()))
}
