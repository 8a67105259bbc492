package storage

import (
	"bikerent-server/models"
	"context"
	"errors"
	"strings"
	"sync"

	"gorm.io/datatypes"
)

// MemoryStore keeps every table in process memory behind one lock.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]*models.User // keyed by email
	userIDs      map[string]string       // id -> email
	bikes        map[string]*models.Bike
	reservations map[string]*models.Reservation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]*models.User),
		userIDs:      make(map[string]string),
		bikes:        make(map[string]*models.Bike),
		reservations: make(map[string]*models.Reservation),
	}
}

func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&memoryTx{store: s})
}

func (s *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(&memoryTx{store: s, writable: true})
}

func (s *MemoryStore) Close() error { return nil }

type memoryTx struct {
	store    *MemoryStore
	writable bool
}

var errReadOnly = errors.New("write inside a read-only transaction")

func (tx *memoryTx) InsertUser(user *models.User) error {
	if !tx.writable {
		return errReadOnly
	}

	email := strings.ToLower(user.Email)
	if _, exists := tx.store.users[email]; exists {
		return ErrConflict
	}
	if _, exists := tx.store.userIDs[user.ID]; exists {
		return ErrConflict
	}

	u := *user
	tx.store.users[email] = &u
	tx.store.userIDs[u.ID] = email
	return nil
}

func (tx *memoryTx) UserByEmail(email string) (*models.User, error) {
	user, exists := tx.store.users[strings.ToLower(email)]
	if !exists {
		return nil, ErrNotFound
	}

	u := *user
	return &u, nil
}

func (tx *memoryTx) UserByID(id string) (*models.User, error) {
	email, exists := tx.store.userIDs[id]
	if !exists {
		return nil, ErrNotFound
	}

	return tx.UserByEmail(email)
}

func (tx *memoryTx) Bikes() ([]models.Bike, error) {
	bikes := make([]models.Bike, 0, len(tx.store.bikes))
	for _, bike := range tx.store.bikes {
		bikes = append(bikes, *bike)
	}

	return bikes, nil
}

func (tx *memoryTx) Bike(id string) (*models.Bike, error) {
	bike, exists := tx.store.bikes[id]
	if !exists {
		return nil, ErrNotFound
	}

	b := *bike
	return &b, nil
}

func (tx *memoryTx) PutBike(bike *models.Bike) error {
	if !tx.writable {
		return errReadOnly
	}

	b := *bike
	tx.store.bikes[b.ID] = &b
	return nil
}

func (tx *memoryTx) InsertBikeIfMissing(bike *models.Bike) error {
	if _, exists := tx.store.bikes[bike.ID]; exists {
		return nil
	}

	return tx.PutBike(bike)
}

func (tx *memoryTx) InsertReservation(reservation *models.Reservation) error {
	if !tx.writable {
		return errReadOnly
	}

	if _, exists := tx.store.reservations[reservation.ID]; exists {
		return ErrConflict
	}

	tx.store.reservations[reservation.ID] = cloneReservation(reservation)
	return nil
}

func (tx *memoryTx) Reservation(id string) (*models.Reservation, error) {
	reservation, exists := tx.store.reservations[id]
	if !exists {
		return nil, ErrNotFound
	}

	return cloneReservation(reservation), nil
}

func (tx *memoryTx) SaveReservation(reservation *models.Reservation) error {
	if !tx.writable {
		return errReadOnly
	}

	if _, exists := tx.store.reservations[reservation.ID]; !exists {
		return ErrNotFound
	}

	tx.store.reservations[reservation.ID] = cloneReservation(reservation)
	return nil
}

func (tx *memoryTx) DeleteReservation(id string) error {
	if !tx.writable {
		return errReadOnly
	}

	if _, exists := tx.store.reservations[id]; !exists {
		return ErrNotFound
	}

	delete(tx.store.reservations, id)
	return nil
}

func (tx *memoryTx) ReservationsByUser(userID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	for _, reservation := range tx.store.reservations {
		if reservation.UserID == userID {
			reservations = append(reservations, *cloneReservation(reservation))
		}
	}

	return reservations, nil
}

func (tx *memoryTx) ReservationsByBike(bikeID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	for _, reservation := range tx.store.reservations {
		if reservation.BikeID == bikeID {
			reservations = append(reservations, *cloneReservation(reservation))
		}
	}

	return reservations, nil
}

func cloneReservation(reservation *models.Reservation) *models.Reservation {
	r := *reservation
	if reservation.PaidAt != nil {
		paidAt := *reservation.PaidAt
		r.PaidAt = &paidAt
	}
	if reservation.Metadata != nil {
		r.Metadata = make(datatypes.JSONMap, len(reservation.Metadata))
		for k, v := range reservation.Metadata {
			r.Metadata[k] = v
		}
	}

	return &r
}
