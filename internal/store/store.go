// Package store holds the gorm repositories for profiles, products and orders.
//
// Every repository takes the request context and issues independent
// statements; callers that need several writes to succeed together must
// compensate themselves.
package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"example.com/storefront/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Page is a zero-based window over a listing.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}

// Models lists every table the application owns, in creation order.
func Models() []any {
	return []any{
		&model.Account{},
		&model.RevokedToken{},
		&model.Profile{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
