package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/angelmondragon/soundstall-backend/pkg/db"
)

const dialectPostgres = "postgres"

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(conn *gorm.DB) Base {
	return Base{db: conn}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// Dialect reports the active driver name ("postgres", "sqlite").
func (b Base) Dialect() string {
	if b.db == nil || b.db.Dialector == nil {
		return ""
	}
	return b.db.Dialector.Name()
}

// First loads the first row matching query into dest. A missing row is
// reported as found=false with a nil error.
func (b Base) First(ctx context.Context, dest any, query string, args ...any) (bool, error) {
	err := b.DB(ctx).Where(query, args...).First(dest).Error
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return false, nil
	}
	return false, err
}

// IsUniqueViolation matches err against the named Postgres index. SQLite does
// not report index names, so any unique failure matches there.
func (b Base) IsUniqueViolation(err error, pgIndex string) bool {
	if b.Dialect() != dialectPostgres {
		pgIndex = ""
	}
	return db.IsUniqueViolation(err, pgIndex)
}
