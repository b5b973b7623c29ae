package db

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMySQL_DoesNotDial(t *testing.T) {
	gormDB, err := NewMySQL("auth_user:auth_password@tcp(127.0.0.1:1)/auth_db?parseTime=True")
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	assert.Equal(t, 0, sqlDB.Stats().OpenConnections)
	require.NoError(t, sqlDB.Close())
}

func TestNewMySQLFromConn(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := NewMySQLFromConn(conn)
	require.NoError(t, err)
	assert.True(t, gormDB.Config.SkipDefaultTransaction)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	assert.Same(t, conn, sqlDB)

	mock.ExpectClose()
	require.NoError(t, conn.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
