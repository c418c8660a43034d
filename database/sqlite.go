package database

import (
	"database/sql/driver"
	"strings"
	"sync"

	sqlitedriver "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var registerLower sync.Once

// OpenSQLite returns a SQLite dialector whose LOWER folds case the way Go
// does, so case-insensitive lookups behave the same as on Postgres for
// non-ASCII text. The built-in only folds ASCII letters.
func OpenSQLite(dsn string) gorm.Dialector {
	registerLower.Do(func() {
		sqlitedriver.MustRegisterDeterministicScalarFunction("lower", 1, unicodeLower)
	})
	return sqlite.Open(dsn)
}

func unicodeLower(_ *sqlitedriver.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}
