package storage

import (
	"bikerent-server/models"
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Tx is a view over the tables of a Store for the duration of one View or
// Update call. Values are copies; writing back requires an explicit Put/Save.
type Tx interface {
	InsertUser(user *models.User) error
	UserByEmail(email string) (*models.User, error)
	UserByID(id string) (*models.User, error)

	Bikes() ([]models.Bike, error)
	Bike(id string) (*models.Bike, error)
	PutBike(bike *models.Bike) error
	// InsertBikeIfMissing leaves an existing record with the same id untouched.
	InsertBikeIfMissing(bike *models.Bike) error

	InsertReservation(reservation *models.Reservation) error
	Reservation(id string) (*models.Reservation, error)
	SaveReservation(reservation *models.Reservation) error
	DeleteReservation(id string) error
	ReservationsByUser(userID string) ([]models.Reservation, error)
	ReservationsByBike(bikeID string) ([]models.Reservation, error)
}

// Store is the persistence boundary of the service. Update runs fn as a
// single critical section: no other Update or View observes its
// intermediate state. fn must validate before it writes; a failing fn is not
// guaranteed to be rolled back by every implementation.
type Store interface {
	View(ctx context.Context, fn func(tx Tx) error) error
	Update(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
