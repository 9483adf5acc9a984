package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onda-do/registro-api/internal/application/auth"
	"github.com/onda-do/registro-api/internal/application/dto"
	"github.com/onda-do/registro-api/internal/application/ports"
	"github.com/onda-do/registro-api/internal/domain"
	"github.com/onda-do/registro-api/internal/domain/entity"
	"github.com/onda-do/registro-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fake de UserRepository en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeUserRepo struct {
	byEmail map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrDuplicate
	}
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.byEmail[u.Email]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range r.byEmail {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

var authNow = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

const authSecret = "secret-de-pruebas"

func newAuthUseCase() (*auth.AuthUseCase, *fakeUserRepo) {
	repo := newFakeUserRepo()
	uc := auth.NewAuthUseCase(repo, auth.JWTConfig{
		Secret:     authSecret,
		ExpMinutes: 60,
		Issuer:     "registro-api-test",
	}, ports.FixedClock{T: authNow})
	return uc, repo
}

func registerReq(role string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:    "ana@onda.gob.do",
		Password: "clave-segura-123",
		Name:     "Ana Díaz",
		Role:     role,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RegisterUser
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterUser_CreaFuncionarioActivo(t *testing.T) {
	uc, repo := newAuthUseCase()

	resp, err := uc.RegisterUser(context.Background(), registerReq(entity.RoleRevisor))
	require.NoError(t, err)
	assert.Equal(t, "ana@onda.gob.do", resp.Email)
	assert.Equal(t, entity.RoleRevisor, resp.Role)
	assert.Equal(t, "active", resp.Status)

	stored := repo.byEmail["ana@onda.gob.do"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "clave-segura-123", stored.PasswordHash,
		"el password nunca se persiste en claro")
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterUser_EmailDuplicado(t *testing.T) {
	uc, _ := newAuthUseCase()
	_, err := uc.RegisterUser(context.Background(), registerReq(entity.RoleCajero))
	require.NoError(t, err)

	_, err = uc.RegisterUser(context.Background(), registerReq(entity.RoleCajero))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRegisterUser_RolDesconocido(t *testing.T) {
	uc, _ := newAuthUseCase()
	_, err := uc.RegisterUser(context.Background(), registerReq("bodeguero"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"solo los roles de la oficina son válidos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_TokenConUsuarioYRol(t *testing.T) {
	uc, _ := newAuthUseCase()
	reg, err := uc.RegisterUser(context.Background(), registerReq(entity.RoleRegistrador))
	require.NoError(t, err)

	resp, err := uc.Login(context.Background(), dto.LoginRequest{
		Email: "ana@onda.gob.do", Password: "clave-segura-123",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, reg.ID, resp.User.ID)

	userID, role, err := jwt.Parse(authSecret, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, userID)
	assert.Equal(t, entity.RoleRegistrador, role)
}

func TestLogin_PasswordIncorrecto(t *testing.T) {
	uc, _ := newAuthUseCase()
	_, err := uc.RegisterUser(context.Background(), registerReq(entity.RoleCajero))
	require.NoError(t, err)

	_, err = uc.Login(context.Background(), dto.LoginRequest{
		Email: "ana@onda.gob.do", Password: "otra-clave",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistente(t *testing.T) {
	uc, _ := newAuthUseCase()
	_, err := uc.Login(context.Background(), dto.LoginRequest{
		Email: "nadie@onda.gob.do", Password: "x",
	})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioSuspendido(t *testing.T) {
	uc, repo := newAuthUseCase()
	_, err := uc.RegisterUser(context.Background(), registerReq(entity.RoleCajero))
	require.NoError(t, err)
	repo.byEmail["ana@onda.gob.do"].Status = "suspended"

	_, err = uc.Login(context.Background(), dto.LoginRequest{
		Email: "ana@onda.gob.do", Password: "clave-segura-123",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
