package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"CandyShop/internal/store"
	"CandyShop/pkg/kit"
)

func newTestService(t *testing.T) (*Service, *store.MemStore) {
	t.Helper()

	ms := store.NewMemStore()
	return &Service{
		Unit: store.NewUnit(ms, nil, nil),
		JWT:  NewTokenMaker("test-secret"),
		TTL:  time.Minute,
		Cost: bcrypt.MinCost,
	}, ms
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:     "Ana",
		Email:    "Ana@Example.com ",
		Password: "secret1",
		Phone:    "555-0100",
	}
}

func TestRegister_CreatesUserWithHashedPassword(t *testing.T) {
	svc, ms := newTestService(t)

	u, err := svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, 1, u.ID)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.Empty(t, u.Address)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))

	d, _ := ms.Load(context.Background())
	require.Len(t, d.Users, 1)
	assert.False(t, d.Users[0].RegisteredAt.IsZero())
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		want   error
	}{
		{name: "missing name", mutate: func(in *RegisterInput) { in.Name = "  " }, want: ErrMissingFields},
		{name: "missing email", mutate: func(in *RegisterInput) { in.Email = "" }, want: ErrMissingFields},
		{name: "missing password", mutate: func(in *RegisterInput) { in.Password = "" }, want: ErrMissingFields},
		{name: "short password", mutate: func(in *RegisterInput) { in.Password = "12345" }, want: ErrWeakPassword},
		{name: "bad email", mutate: func(in *RegisterInput) { in.Email = "ana.example.com" }, want: ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ms := newTestService(t)
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, kit.KindValidation, kit.KindOf(err))
			assert.Zero(t, ms.Saves())
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Email = "ANA@example.com"
	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.Equal(t, 400, kit.KindOf(err).Status())
}

func TestRegister_SequentialIDs(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		in := validInput()
		in.Email = email
		u, err := svc.Register(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, i+1, u.ID)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validInput())
	require.NoError(t, err)

	u, tok, err := svc.Login(ctx, " ANA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)

	claims, err := svc.JWT.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)

	_, _, err = svc.Login(ctx, "ana@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "", "secret1")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
