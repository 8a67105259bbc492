package services

import (
	"bikerent-server/models"
	"bikerent-server/storage"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type LedgerTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *storage.MemoryStore
	catalog *CatalogService
	ledger  *ReservationLedger
	clock   time.Time
}

func (s *LedgerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = storage.NewMemoryStore()
	s.catalog = NewCatalogService(s.store)
	s.ledger = NewReservationLedger(s.store)

	s.clock = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.ledger.now = func() time.Time {
		s.clock = s.clock.Add(time.Minute)
		return s.clock
	}
	seq := 0
	s.ledger.newID = func() string {
		seq++
		return fmt.Sprintf("r%d", seq)
	}

	s.Require().NoError(s.catalog.Seed(s.ctx, DefaultFleet()))
}

func (s *LedgerTestSuite) bike(id string) *models.Bike {
	bike, err := s.catalog.Get(s.ctx, id)
	s.Require().NoError(err)
	return bike
}

func (s *LedgerTestSuite) TestCreateHoldsBike() {
	reservation, err := s.ledger.Create(s.ctx, "u1", "1", "daily")
	s.NoError(err)
	s.Equal("r1", reservation.ID)
	s.Equal("u1", reservation.UserID)
	s.Equal("1", reservation.BikeID)
	s.Equal("daily", reservation.PlanKey)
	s.Equal(models.ReservationStatusPendingPayment, reservation.Status)
	s.Equal(80.00, reservation.Price)
	s.Nil(reservation.PaidAt)

	s.False(s.bike("1").Available)
}

func (s *LedgerTestSuite) TestCreateRejectsUnavailableBike() {
	_, err := s.ledger.Create(s.ctx, "u1", "2", "hourly")
	s.Require().NoError(err)

	_, err = s.ledger.Create(s.ctx, "u2", "2", "hourly")
	s.ErrorIs(err, ErrBikeUnavailable)

	reservations, err := s.ledger.ListForUser(s.ctx, "u2")
	s.NoError(err)
	s.Empty(reservations)
}

func (s *LedgerTestSuite) TestCreateRejectsHeldBikeMarkedAvailable() {
	reservation, err := s.ledger.Create(s.ctx, "u1", "2", "hourly")
	s.Require().NoError(err)

	// An operator edits the bikes table by hand.
	bike := s.bike("2")
	bike.Available = true
	s.Require().NoError(s.store.Update(s.ctx, func(tx storage.Tx) error {
		return tx.PutBike(bike)
	}))

	_, err = s.ledger.Create(s.ctx, "u2", "2", "hourly")
	s.ErrorIs(err, ErrBikeUnavailable)

	s.Require().NoError(s.ledger.Cancel(s.ctx, reservation.ID, "u1"))
	_, err = s.ledger.Create(s.ctx, "u2", "2", "hourly")
	s.NoError(err)
}

func (s *LedgerTestSuite) TestCreateRejectsUnknownBike() {
	_, err := s.ledger.Create(s.ctx, "u1", "99", "hourly")
	s.ErrorIs(err, ErrBikeUnavailable)
}

func (s *LedgerTestSuite) TestCreateRejectsUnknownPlan() {
	_, err := s.ledger.Create(s.ctx, "u1", "1", "monthly")
	s.ErrorIs(err, ErrInvalidPlan)

	s.True(s.bike("1").Available)
}

func (s *LedgerTestSuite) TestMarkPaid() {
	reservation, err := s.ledger.Create(s.ctx, "u1", "3", "weekly")
	s.Require().NoError(err)

	paid, err := s.ledger.MarkPaid(s.ctx, reservation.ID)
	s.NoError(err)
	s.Equal(models.ReservationStatusPaid, paid.Status)
	s.Require().NotNil(paid.PaidAt)
	s.True(paid.PaidAt.After(reservation.CreatedAt))

	// Paying does not release the bike.
	s.False(s.bike("3").Available)

	_, err = s.ledger.MarkPaid(s.ctx, "missing")
	s.ErrorIs(err, ErrNotFound)
}

func (s *LedgerTestSuite) TestCancelRestoresBike() {
	reservation, err := s.ledger.Create(s.ctx, "u1", "1", "hourly")
	s.Require().NoError(err)

	s.NoError(s.ledger.Cancel(s.ctx, reservation.ID, "u1"))
	s.True(s.bike("1").Available)

	_, err = s.ledger.Get(s.ctx, reservation.ID, "u1")
	s.ErrorIs(err, ErrNotFound)
}

func (s *LedgerTestSuite) TestCancelPaidReservation() {
	reservation, err := s.ledger.Create(s.ctx, "u1", "1", "hourly")
	s.Require().NoError(err)
	_, err = s.ledger.MarkPaid(s.ctx, reservation.ID)
	s.Require().NoError(err)

	s.NoError(s.ledger.Cancel(s.ctx, reservation.ID, "u1"))
	s.True(s.bike("1").Available)
}

func (s *LedgerTestSuite) TestCancelIgnoresOtherUsersAndUnknownIDs() {
	reservation, err := s.ledger.Create(s.ctx, "u1", "1", "hourly")
	s.Require().NoError(err)

	s.NoError(s.ledger.Cancel(s.ctx, reservation.ID, "u2"))
	s.False(s.bike("1").Available)

	s.NoError(s.ledger.Cancel(s.ctx, "missing", "u1"))

	_, err = s.ledger.Get(s.ctx, reservation.ID, "u1")
	s.NoError(err)
}

func (s *LedgerTestSuite) TestGetIsScopedToOwner() {
	reservation, err := s.ledger.Create(s.ctx, "u1", "4", "daily")
	s.Require().NoError(err)

	got, err := s.ledger.Get(s.ctx, reservation.ID, "u1")
	s.NoError(err)
	s.Equal(reservation.ID, got.ID)

	_, err = s.ledger.Get(s.ctx, reservation.ID, "u2")
	s.ErrorIs(err, ErrNotFound)
}

func (s *LedgerTestSuite) TestListForUserNewestFirst() {
	first, err := s.ledger.Create(s.ctx, "u1", "1", "hourly")
	s.Require().NoError(err)
	second, err := s.ledger.Create(s.ctx, "u1", "2", "daily")
	s.Require().NoError(err)
	_, err = s.ledger.Create(s.ctx, "u2", "3", "daily")
	s.Require().NoError(err)

	reservations, err := s.ledger.ListForUser(s.ctx, "u1")
	s.NoError(err)
	s.Require().Len(reservations, 2)
	s.Equal(second.ID, reservations[0].ID)
	s.Equal(first.ID, reservations[1].ID)
}

func (s *LedgerTestSuite) TestAttachCheckout() {
	reservation, err := s.ledger.Create(s.ctx, "u1", "1", "hourly")
	s.Require().NoError(err)

	s.NoError(s.ledger.AttachCheckout(s.ctx, reservation.ID, "cs_test_1"))

	got, err := s.ledger.Get(s.ctx, reservation.ID, "u1")
	s.NoError(err)
	s.Equal("cs_test_1", got.Metadata["checkout_session_id"])

	s.ErrorIs(s.ledger.AttachCheckout(s.ctx, "missing", "cs"), ErrNotFound)
}

// The full rental: reserve, pay, cancel, then reserve the same bike again.
func (s *LedgerTestSuite) TestRentalLifecycle() {
	reservation, err := s.ledger.Create(s.ctx, "u1", "3", "hourly")
	s.Require().NoError(err)
	s.Equal(15.00, reservation.Price)

	_, err = s.ledger.Create(s.ctx, "u2", "3", "hourly")
	s.ErrorIs(err, ErrBikeUnavailable)

	_, err = s.ledger.MarkPaid(s.ctx, reservation.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.ledger.Cancel(s.ctx, reservation.ID, "u1"))

	again, err := s.ledger.Create(s.ctx, "u2", "3", "hourly")
	s.NoError(err)
	s.NotEqual(reservation.ID, again.ID)
}

func (s *LedgerTestSuite) TestRegisterReserveCancel() {
	accounts := NewAccountService(s.store)
	accounts.hashCost = bcrypt.MinCost

	_, err := accounts.Register(s.ctx, "A", "a@example.com", "abc123", "11999990000")
	s.Require().NoError(err)
	user, err := accounts.Authenticate(s.ctx, "a@example.com", "abc123")
	s.Require().NoError(err)

	reservation, err := s.ledger.Create(s.ctx, user.ID, "1", "hourly")
	s.Require().NoError(err)
	s.Equal(models.ReservationStatusPendingPayment, reservation.Status)
	s.Equal(15.00, reservation.Price)
	s.False(s.bike("1").Available)

	s.NoError(s.ledger.Cancel(s.ctx, reservation.ID, user.ID))
	s.True(s.bike("1").Available)

	reservations, err := s.ledger.ListForUser(s.ctx, user.ID)
	s.NoError(err)
	s.Empty(reservations)
}

func (s *LedgerTestSuite) TestConcurrentCreateHoldsBikeOnce() {
	const attempts = 32

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.ledger.Create(s.ctx, fmt.Sprintf("u%d", i), "1", "hourly")
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		s.ErrorIs(err, ErrBikeUnavailable)
	}
	s.Equal(1, succeeded)

	var holding int
	err := s.store.View(s.ctx, func(tx storage.Tx) error {
		reservations, err := tx.ReservationsByBike("1")
		holding = len(reservations)
		return err
	})
	s.NoError(err)
	s.Equal(1, holding)
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}
