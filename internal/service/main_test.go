package service

import (
	"os"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"AquaLink/internal/model"
	"AquaLink/pkg/logger"
	"AquaLink/pkg/snowflake"
)

func TestMain(m *testing.M) {
	logger.Init()
	if err := snowflake.Init(1, 1); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.EmergencyAlert{},
		&model.EmergencyContact{},
		&model.EmergencySettings{},
		&model.NotificationLog{},
	))

	return db
}

func seedContact(t *testing.T, db *gorm.DB, userID, publicID int64, name, phone string) *model.EmergencyContact {
	t.Helper()

	contact := &model.EmergencyContact{
		PublicID: publicID,
		UserID:   userID,
		Name:     name,
		Phone:    phone,
	}
	require.NoError(t, db.Create(contact).Error)
	return contact
}
