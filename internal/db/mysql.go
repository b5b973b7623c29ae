package db

import (
	"database/sql"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewMySQL returns a GORM DB instance for dsn.
//
// No connection is made until the first statement, so the server starts
// while the database is down and /health reports it. Idle connections are
// not retained: each credential-store call checks a connection out and it
// is closed once the statement completes. Writes are single auto-committed
// statements, so GORM's implicit transaction is off.
func NewMySQL(dsn string) (*gorm.DB, error) {
	db, err := open(mysql.New(mysql.Config{
		DSN:                       dsn,
		SkipInitializeWithVersion: true,
	}))
	if err != nil {
		return nil, err
	}
	if err := releaseIdle(db); err != nil {
		return nil, err
	}
	return db, nil
}

// NewMySQLFromConn wraps an existing *sql.DB with the GORM settings of
// NewMySQL. The pool settings of conn are left to the caller.
func NewMySQLFromConn(conn *sql.DB) (*gorm.DB, error) {
	return open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}))
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}

func newGormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}
}

func releaseIdle(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(0)
	return nil
}
