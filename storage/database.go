package storage

import (
	"bikerent-server/models"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kataras/golog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DatabaseStore is the Postgres-backed Store. Update runs in one transaction
// and locks every bike and reservation row it reads.
type DatabaseStore struct {
	db *gorm.DB
}

func connectToDB(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("DB_CONNECTION_STRING is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("error connecting to db: %w", err)
	}

	return db, nil
}

func performMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Bike{},
		&models.Reservation{},
	)
}

func InitializeDB(dsn string) (*DatabaseStore, error) {
	db, err := connectToDB(dsn)
	if err != nil {
		return nil, err
	}

	if err := performMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	golog.Info("database connected and migrated")
	return &DatabaseStore{db: db}, nil
}

func (s *DatabaseStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return fn(&gormTx{db: s.db.WithContext(ctx)})
}

func (s *DatabaseStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx, lock: true})
	})
}

func (s *DatabaseStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

type gormTx struct {
	db   *gorm.DB
	lock bool
}

func (tx *gormTx) locked() *gorm.DB {
	if tx.lock {
		return tx.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	return tx.db
}

func (tx *gormTx) InsertUser(user *models.User) error {
	u := *user
	u.Email = strings.ToLower(u.Email)
	if err := tx.db.Create(&u).Error; err != nil {
		return translateError(err)
	}

	return nil
}

func (tx *gormTx) UserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := tx.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

func (tx *gormTx) UserByID(id string) (*models.User, error) {
	var user models.User
	if err := tx.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

func (tx *gormTx) Bikes() ([]models.Bike, error) {
	var bikes []models.Bike
	if err := tx.db.Order("id").Find(&bikes).Error; err != nil {
		return nil, translateError(err)
	}

	return bikes, nil
}

func (tx *gormTx) Bike(id string) (*models.Bike, error) {
	var bike models.Bike
	if err := tx.locked().Where("id = ?", id).First(&bike).Error; err != nil {
		return nil, translateError(err)
	}

	return &bike, nil
}

func (tx *gormTx) PutBike(bike *models.Bike) error {
	return translateError(tx.db.Save(bike).Error)
}

func (tx *gormTx) InsertBikeIfMissing(bike *models.Bike) error {
	return translateError(tx.db.Clauses(clause.OnConflict{DoNothing: true}).Create(bike).Error)
}

func (tx *gormTx) InsertReservation(reservation *models.Reservation) error {
	return translateError(tx.db.Create(reservation).Error)
}

func (tx *gormTx) Reservation(id string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := tx.locked().Where("id = ?", id).First(&reservation).Error; err != nil {
		return nil, translateError(err)
	}

	return &reservation, nil
}

func (tx *gormTx) SaveReservation(reservation *models.Reservation) error {
	res := tx.db.Model(&models.Reservation{}).
		Where("id = ?", reservation.ID).
		Select("*").
		Updates(reservation)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (tx *gormTx) DeleteReservation(id string) error {
	res := tx.db.Where("id = ?", id).Delete(&models.Reservation{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (tx *gormTx) ReservationsByUser(userID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := tx.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&reservations).Error; err != nil {
		return nil, translateError(err)
	}

	return reservations, nil
}

func (tx *gormTx) ReservationsByBike(bikeID string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	if err := tx.db.Where("bike_id = ?", bikeID).Find(&reservations).Error; err != nil {
		return nil, translateError(err)
	}

	return reservations, nil
}

// translateError maps driver errors onto the storage sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}

	return err
}
