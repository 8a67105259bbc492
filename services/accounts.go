package services

import (
	"bikerent-server/models"
	"bikerent-server/storage"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6 // characters

	// bcrypt only reads this many bytes of its input.
	bcryptMaxBytes = 72
)

// AccountService registers and authenticates users. Only bcrypt hashes of
// passwords are stored.
type AccountService struct {
	store    storage.Store
	hashCost int
	now      func() time.Time
}

func NewAccountService(store storage.Store) *AccountService {
	return &AccountService{
		store:    store,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (s *AccountService) Register(ctx context.Context, name, email, password, phone string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	phone = strings.TrimSpace(phone)

	if name == "" || email == "" || password == "" || phone == "" {
		return nil, ErrMissingFields
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hashedPassword, err := s.hashAndSaltPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Phone:        phone,
		CreatedAt:    s.now(),
	}

	err = s.store.Update(ctx, func(tx storage.Tx) error {
		if _, err := tx.UserByEmail(email); err == nil {
			return ErrDuplicateEmail
		} else if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		return tx.InsertUser(user)
	})
	if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, storage.ErrConflict) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	return user, nil
}

func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	var user *models.User
	err := s.store.View(ctx, func(tx storage.Tx) error {
		var err error
		user, err = tx.UserByEmail(email)
		return err
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), bcryptInput(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *AccountService) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	err := s.store.View(ctx, func(tx storage.Tx) error {
		var err error
		user, err = tx.UserByID(id)
		return err
	})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

func (s *AccountService) hashAndSaltPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword(bcryptInput(password), s.hashCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

// bcryptInput is what gets hashed for password. Passwords longer than bcrypt
// accepts are reduced to a base64 SHA-256 digest first, so every byte still
// counts.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxBytes {
		return []byte(password)
	}

	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
