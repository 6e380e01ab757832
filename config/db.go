package config

import (
	"fmt"

	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the GORM connection for the configured driver.
// The memory driver has no database and is rejected here. MySQL sessions are
// pinned to REPEATABLE READ, the isolation level the conditional reservation
// insert relies on.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DBDSN)
	case DriverMySQL:
		dsn, err := mysqlDSN(cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("driver %q has no database connection", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	if cfg.DBDriver == DriverSQLite {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY
		// between our own goroutines.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// mysqlDSN sets transaction_isolation on every connection so a server
// configured for READ COMMITTED still takes next-key locks in
// INSERT ... SELECT ... WHERE NOT EXISTS.
func mysqlDSN(dsn string) (string, error) {
	c, err := gomysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	if c.Params == nil {
		c.Params = make(map[string]string)
	}
	c.Params["transaction_isolation"] = "'REPEATABLE-READ'"
	return c.FormatDSN(), nil
}
