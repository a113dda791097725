package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/database/models"
)

func TestNewConnection_Validation(t *testing.T) {
	_, err := NewConnection("postgres", "")
	assert.Error(t, err)

	_, err = NewConnection("mysql", "root@/db")
	assert.ErrorContains(t, err, "unsupported DB driver")
}

func TestMigrateCommissionDB_SQLite(t *testing.T) {
	db, err := NewConnection("sqlite", "file::memory:")
	require.NoError(t, err)
	require.NoError(t, MigrateCommissionDB(db))

	row := models.SellerAssignment{UploadMonth: "2026-03", CustomerName: "Ana", SellerName: "Carol"}
	require.NoError(t, db.Create(&row).Error)

	_, err = uuid.Parse(row.ID)
	assert.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("seller_lead_mapping"))

	var got models.SellerAssignment
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	assert.Equal(t, "Carol", got.SellerName)
	assert.Nil(t, got.CustomerEmail)
}
