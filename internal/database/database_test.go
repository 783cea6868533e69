package database

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inna-tuzhikova/hasker/internal/config"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

func TestNewSQLite(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"}

	svc, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	health := svc.Health()
	assert.Equal(t, "up", health["status"])

	db := svc.GetDB()
	for _, m := range models.AllModels() {
		assert.True(t, db.Migrator().HasTable(m), "table for %T", m)
	}
}

func TestHealthAfterClose(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"}

	svc, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	health := svc.Health()
	assert.Equal(t, "down", health["status"])
	assert.NotEmpty(t, health["error"])
}

func TestIsUniqueViolation(t *testing.T) {
	db, err := OpenSQLite(":memory:", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	user := models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)

	dup := models.User{Username: "alice", Email: "other@example.com", Password: "x"}
	err = db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(gorm.ErrRecordNotFound))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}
