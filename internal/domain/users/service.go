package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"mediation-cms/internal/access"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("email already registered")
	ErrBadLogin     = errors.New("invalid email or password")
)

const minPasswordLen = 8

type Service struct {
	repo Repository
	now  func() time.Time
	cost int

	// hash de referencia para no responder más rápido cuando el email no existe
	dummyHash []byte
}

func NewService(repo Repository) *Service {
	return newService(repo, bcrypt.DefaultCost)
}

func newService(repo Repository, cost int) *Service {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("mediation-cms-dummy"), cost)
	return &Service{
		repo:      repo,
		now:       time.Now,
		cost:      cost,
		dummyHash: dummy,
	}
}

type CreateInput struct {
	Email    string
	Name     string
	Role     string
	Password string
}

func (s *Service) Create(ctx context.Context, req access.Requester, in CreateInput) (User, error) {
	if access.Users.Decide(access.OpCreate, req).Denied() {
		return User{}, access.DenialError(req)
	}
	return s.create(ctx, in)
}

// EnsureAdmin crea el admin inicial si el email no existe (arranque del servicio).
// No pasa por políticas: lo invoca el proceso, no un request.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (User, bool, error) {
	email = normalizeEmail(email)
	if u, err := s.repo.GetByEmail(ctx, email); err == nil {
		return u, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return User{}, false, err
	}

	u, err := s.create(ctx, CreateInput{
		Email:    email,
		Name:     "Administrator",
		Role:     string(access.RoleAdmin),
		Password: password,
	})
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (s *Service) create(ctx context.Context, in CreateInput) (User, error) {
	email := normalizeEmail(in.Email)
	if !validEmail(email) {
		return User{}, ErrInvalidInput
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return User{}, ErrInvalidInput
	}
	role, ok := access.ParseRole(in.Role)
	if !ok {
		return User{}, ErrInvalidInput
	}
	if len(in.Password) < minPasswordLen {
		return User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate valida email/password. Cualquier fallo es ErrBadLogin.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrBadLogin
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return User{}, ErrBadLogin
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrBadLogin
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, req access.Requester, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrNotFound
	}

	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !access.Users.Permits(access.OpRead, req, u.AccessDocument()) {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, req access.Requester, limit int) ([]User, error) {
	filter, denied := access.Users.Decide(access.OpRead, req).Scope()
	if denied {
		if !req.Authenticated() {
			return nil, access.ErrUnauthorized
		}
		return []User{}, nil
	}
	return s.repo.List(ctx, Query{Filter: filter, Limit: limit})
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name     *string
	Password *string
	Role     *string
}

func (s *Service) Update(ctx context.Context, req access.Requester, id string, in UpdateInput) (User, error) {
	u, err := s.Get(ctx, req, id)
	if err != nil {
		return User{}, err
	}

	doc := u.AccessDocument()
	if !access.Users.Permits(access.OpUpdate, req, doc) {
		return User{}, access.DenialError(req)
	}

	if in.Name != nil {
		if !access.Users.CanWriteField(access.FieldName, req, doc) {
			return User{}, access.ErrForbidden
		}
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return User{}, ErrInvalidInput
		}
		u.Name = name
	}

	if in.Password != nil {
		if !access.Users.CanWriteField(access.FieldPassword, req, doc) {
			return User{}, access.ErrForbidden
		}
		if len(*in.Password) < minPasswordLen {
			return User{}, ErrInvalidInput
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.cost)
		if err != nil {
			return User{}, err
		}
		u.PasswordHash = string(hash)
	}

	if in.Role != nil {
		if !access.Users.CanWriteField(access.FieldRole, req, doc) {
			return User{}, access.ErrForbidden
		}
		role, ok := access.ParseRole(*in.Role)
		if !ok {
			return User{}, ErrInvalidInput
		}
		u.Role = role
	}

	u.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) Delete(ctx context.Context, req access.Requester, id string) error {
	u, err := s.Get(ctx, req, id)
	if err != nil {
		return err
	}
	if !access.Users.Permits(access.OpDelete, req, u.AccessDocument()) {
		return access.DenialError(req)
	}
	if u.ID == req.UserID {
		// un admin no puede borrarse a sí mismo
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, u.ID)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}
