package services

import (
	"bikerent-server/models"
	"bikerent-server/storage"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/golog"
	"golang.org/x/exp/slices"
	"gorm.io/datatypes"
)

const metadataCheckoutSession = "checkout_session_id"

// ReservationLedger owns the reservation lifecycle:
//
//	pending_payment --MarkPaid--> paid
//
// Cancel deletes a reservation from either state. A bike is unavailable iff
// exactly one reservation references it; every operation that touches both a
// bike and a reservation does so inside one store Update.
type ReservationLedger struct {
	store storage.Store
	now   func() time.Time
	newID func() string
}

func NewReservationLedger(store storage.Store) *ReservationLedger {
	return &ReservationLedger{
		store: store,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

// Create holds bikeID for userID under planKey. The plan price is copied
// into the reservation.
func (l *ReservationLedger) Create(ctx context.Context, userID, bikeID, planKey string) (*models.Reservation, error) {
	var reservation *models.Reservation

	err := l.store.Update(ctx, func(tx storage.Tx) error {
		bike, err := tx.Bike(bikeID)
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("bike %s: %w", bikeID, ErrBikeUnavailable)
		}
		if err != nil {
			return err
		}
		if !bike.Available {
			return fmt.Errorf("bike %s: %w", bikeID, ErrBikeUnavailable)
		}
		// The availability flag is editable outside the service; an existing
		// reservation still holds the bike.
		held, err := tx.ReservationsByBike(bikeID)
		if err != nil {
			return err
		}
		if len(held) > 0 {
			return fmt.Errorf("bike %s held by reservation %s: %w", bikeID, held[0].ID, ErrBikeUnavailable)
		}

		plan, err := LookupPlan(planKey)
		if err != nil {
			return err
		}

		reservation = &models.Reservation{
			ID:        l.newID(),
			UserID:    userID,
			BikeID:    bikeID,
			PlanKey:   plan.Key,
			Status:    models.ReservationStatusPendingPayment,
			Price:     plan.Price,
			CreatedAt: l.now(),
		}
		if err := tx.InsertReservation(reservation); err != nil {
			return err
		}

		bike.Available = false
		return tx.PutBike(bike)
	})
	if err != nil {
		if errors.Is(err, ErrBikeUnavailable) || errors.Is(err, ErrInvalidPlan) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	golog.Debugf("reservation %s holds bike %s (%s)", reservation.ID, bikeID, planKey)
	return reservation, nil
}

// MarkPaid moves a reservation to paid and stamps PaidAt. Repeated calls
// re-stamp the time.
func (l *ReservationLedger) MarkPaid(ctx context.Context, reservationID string) (*models.Reservation, error) {
	var reservation *models.Reservation

	err := l.store.Update(ctx, func(tx storage.Tx) error {
		var err error
		reservation, err = tx.Reservation(reservationID)
		if err != nil {
			return err
		}

		paidAt := l.now()
		reservation.Status = models.ReservationStatusPaid
		reservation.PaidAt = &paidAt
		return tx.SaveReservation(reservation)
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark reservation paid: %w", err)
	}

	return reservation, nil
}

// Cancel deletes the reservation and frees its bike. Unknown ids and
// reservations owned by another user are ignored.
func (l *ReservationLedger) Cancel(ctx context.Context, reservationID, userID string) error {
	err := l.store.Update(ctx, func(tx storage.Tx) error {
		reservation, err := tx.Reservation(reservationID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if reservation.UserID != userID {
			return nil
		}

		if err := tx.DeleteReservation(reservation.ID); err != nil {
			return err
		}

		bike, err := tx.Bike(reservation.BikeID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		bike.Available = true
		return tx.PutBike(bike)
	})
	if err != nil {
		return fmt.Errorf("failed to cancel reservation: %w", err)
	}

	return nil
}

// ListForUser returns the user's reservations, newest first.
func (l *ReservationLedger) ListForUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := l.store.View(ctx, func(tx storage.Tx) error {
		var err error
		reservations, err = tx.ReservationsByUser(userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	slices.SortFunc(reservations, func(a, b models.Reservation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return reservations, nil
}

// Get returns the reservation only to the user who created it.
func (l *ReservationLedger) Get(ctx context.Context, reservationID, userID string) (*models.Reservation, error) {
	var reservation *models.Reservation
	err := l.store.View(ctx, func(tx storage.Tx) error {
		var err error
		reservation, err = tx.Reservation(reservationID)
		return err
	})
	if errors.Is(err, storage.ErrNotFound) || (err == nil && reservation.UserID != userID) {
		return nil, fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return reservation, nil
}

// AttachCheckout records the provider session that will pay for the
// reservation.
func (l *ReservationLedger) AttachCheckout(ctx context.Context, reservationID, sessionID string) error {
	err := l.store.Update(ctx, func(tx storage.Tx) error {
		reservation, err := tx.Reservation(reservationID)
		if err != nil {
			return err
		}

		if reservation.Metadata == nil {
			reservation.Metadata = datatypes.JSONMap{}
		}
		reservation.Metadata[metadataCheckoutSession] = sessionID
		return tx.SaveReservation(reservation)
	})
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to attach checkout session: %w", err)
	}

	return nil
}
