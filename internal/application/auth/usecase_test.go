package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/auth"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
	"github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/memory"
	"github.com/MRD-HG/WilliamMetalAPI/pkg/jwt"
)

const testSecret = "secreto-de-prueba"

func newAuth() (*auth.AuthUseCase, repository.UserRepository) {
	users := memory.New().Repos().Users
	return auth.NewAuthUseCase(users, auth.JWTConfig{Secret: testSecret, ExpMinutes: 5, Issuer: "williammetal-test"}), users
}

func TestRegisterYLogin(t *testing.T) {
	ctx := context.Background()
	uc, _ := newAuth()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: " amina ", Password: "secret1", Role: "manager"})
	require.NoError(t, err)
	assert.Equal(t, "amina", u.Username)
	assert.Equal(t, "amina", u.FullName)
	assert.Equal(t, entity.RoleManager, u.Role)
	assert.True(t, u.IsActive)

	resp, err := uc.Login(ctx, dto.LoginRequest{Username: "amina", Password: "secret1"})
	require.NoError(t, err)
	userID, role, err := jwt.Parse(testSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)
	assert.Equal(t, entity.RoleManager, role)

	me, err := uc.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "amina", me.Username)
	_, err = uc.Me(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegister_Validaciones(t *testing.T) {
	ctx := context.Background()
	uc, _ := newAuth()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "omar", Password: "secret1"})
	require.NoError(t, err)

	cases := map[string]struct {
		in   dto.RegisterRequest
		want error
	}{
		"duplicado":       {dto.RegisterRequest{Username: "omar", Password: "otro123"}, domain.ErrDuplicate},
		"sin username":    {dto.RegisterRequest{Password: "secret1"}, domain.ErrInvalidInput},
		"password corta":  {dto.RegisterRequest{Username: "x", Password: "123"}, domain.ErrInvalidInput},
		"rol desconocido": {dto.RegisterRequest{Username: "y", Password: "secret1", Role: "ROOT"}, domain.ErrInvalidInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.RegisterUser(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLogin_Errores(t *testing.T) {
	ctx := context.Background()
	uc, users := newAuth()
	_, err := uc.RegisterUser(ctx, dto.RegisterRequest{Username: "omar", Password: "secret1"})
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "omar", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(ctx, &entity.User{
		ID: "u-off", Username: "baja", PasswordHash: string(hash), Role: entity.RoleEmployee, CreatedAt: time.Now(),
	}))
	_, err = uc.Login(ctx, dto.LoginRequest{Username: "baja", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
