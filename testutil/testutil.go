// Package testutil wires an isolated in-memory database for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meinhoongagan/carebook/authz"
	"github.com/meinhoongagan/carebook/db"
	"github.com/meinhoongagan/carebook/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a fresh SQLite database, migrates it and installs it as db.DB.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := db.Config()
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), cfg)
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn))

	prev := db.DB
	db.DB = conn
	t.Cleanup(func() {
		db.DB = prev
		sqlDB.Close()
	})
	return conn
}

// CreateUser inserts a user with the given role.
func CreateUser(t *testing.T, conn *gorm.DB, email string, role authz.Role) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, Password: "x", Role: role}
	require.NoError(t, conn.Create(u).Error)
	return u
}

// CreateProfessional inserts a professional user and profile open on the given weekly hours.
func CreateProfessional(t *testing.T, conn *gorm.DB, email string, verified bool, weekly models.WeeklyAvailability) *models.Professional {
	t.Helper()
	u := CreateUser(t, conn, email, authz.RoleProfessional)
	p := &models.Professional{UserID: u.ID, Title: "Dr", Specialty: "therapy", Verified: verified, WeeklyAvailability: weekly}
	if verified {
		now := time.Now().UTC()
		p.VerifiedAt = &now
	}
	require.NoError(t, conn.Create(p).Error)
	p.User = u
	return p
}

// CreateSession inserts an active template and enables it for the professional.
func CreateSession(t *testing.T, conn *gorm.DB, professionalID uint, minutes int, price float64) *models.SessionTemplate {
	t.Helper()
	tpl := &models.SessionTemplate{Name: fmt.Sprintf("session-%dm", minutes), DurationMinutes: minutes, Price: price, Active: true}
	require.NoError(t, conn.Create(tpl).Error)
	require.NoError(t, conn.Create(&models.ProfessionalSession{
		ProfessionalID:    professionalID,
		SessionTemplateID: tpl.ID,
		Enabled:           true,
	}).Error)
	return tpl
}
