// Package store holds the gorm-backed repositories. They are
// constructed once at process start and passed explicitly to handlers;
// nothing in this package is a global.
package store

import (
	"errors"

	"clubhouse-orders-api/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrEmailTaken is returned when the store-level uniqueness constraint
// rejects a duplicate email. The handler's existence pre-check is a
// courtesy; this constraint is what actually closes the race.
var ErrEmailTaken = errors.New("email already registered")

// Store bundles the per-entity repositories over one connection pool.
type Store struct {
	DB      *gorm.DB
	Users   *Users
	Courses *Courses
	Menu    *Menu
	Orders  *Orders
}

// Open connects to the sqlite database and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
	); err != nil {
		return nil, err
	}

	return &Store{
		DB:      db,
		Users:   &Users{db: db},
		Courses: &Courses{db: db},
		Menu:    &Menu{db: db},
		Orders:  &Orders{db: db},
	}, nil
}
