package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"CandyShop/internal/store"
	"CandyShop/pkg/kit"
)

const (
	minPasswordLen  = 6
	defaultTokenTTL = 15 * time.Minute
)

var (
	ErrMissingFields      = kit.Validation("name, email and password are required")
	ErrWeakPassword       = kit.Validation("password must be at least 6 characters")
	ErrInvalidEmail       = kit.Validation("invalid email")
	ErrEmailExists        = kit.Conflict("email already registered")
	ErrMissingCredentials = kit.Validation("email and password are required")
	ErrInvalidCredentials = kit.Unauthorized("invalid email or password")
)

var validate = validator.New()

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// PublicUser is a User as exposed over HTTP, without the password hash.
type PublicUser struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	RegisteredAt time.Time `json:"registered_at"`
}

func Public(u store.User) PublicUser {
	return PublicUser{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Phone:        u.Phone,
		Address:      u.Address,
		RegisteredAt: u.RegisteredAt,
	}
}

type Service struct {
	Unit *store.Unit
	JWT  *TokenMaker
	TTL  time.Duration

	// Cost is the bcrypt cost; zero means bcrypt.DefaultCost.
	Cost int
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (store.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return store.User{}, ErrMissingFields
		}
		return store.User{}, err
	}
	if len(in.Password) < minPasswordLen {
		return store.User{}, ErrWeakPassword
	}
	if err := validate.Var(in.Email, "email"); err != nil {
		return store.User{}, ErrInvalidEmail
	}

	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return store.User{}, err
	}

	var created store.User
	err = s.Unit.Update(ctx, func(d *store.Document) error {
		for _, u := range d.Users {
			if normalizeEmail(u.Email) == in.Email {
				return ErrEmailExists
			}
		}

		created = store.User{
			ID:           d.NextID(store.CollectionUsers),
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: string(hash),
			Phone:        strings.TrimSpace(in.Phone),
			Address:      strings.TrimSpace(in.Address),
			RegisteredAt: time.Now().UTC(),
		}
		d.Users = append(d.Users, created)
		return nil
	})
	if err != nil {
		return store.User{}, err
	}
	return created, nil
}

// Login checks the credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (store.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return store.User{}, "", ErrMissingCredentials
	}

	var (
		u     store.User
		found bool
	)
	err := s.Unit.View(ctx, func(d *store.Document) error {
		for _, cand := range d.Users {
			if normalizeEmail(cand.Email) == email {
				u, found = cand, true
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return store.User{}, "", err
	}
	if !found {
		return store.User{}, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return store.User{}, "", ErrInvalidCredentials
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	tok, err := s.JWT.New(u.ID, u.Email, ttl)
	if err != nil {
		return store.User{}, "", err
	}
	return u, tok, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
