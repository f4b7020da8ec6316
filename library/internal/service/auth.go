package service

import (
	"context"
	"strings"
	"sync"

	"github.com/Astemirdum/my-little-library/library/internal/errs"
	"github.com/Astemirdum/my-little-library/library/internal/model"
	"github.com/Astemirdum/my-little-library/pkg/validate"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgAuthFailed         = "Failed to authenticate user."
	msgCreateUserFailed   = "Database Error: Failed to create user."
)

// SessionStarter issues the session cookie for a freshly authenticated user.
type SessionStarter func(userID string) error

// dummyHash is compared against when the user does not exist.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
})

// Login returns nil, nil for unknown emails and wrong passwords.
// Storage failures come back as ErrAuth.
func (s *Service) Login(ctx context.Context, email, password string) (*model.UserInfo, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, nil
		}
		return nil, errors.Wrapf(errs.ErrAuth, "lookup user: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	info := u.Info()
	return &info, nil
}

// RegisterUser validates the signup fields, hashes the password and stores
// a new user. Invalid input comes back as ErrValidation.
func (s *Service) RegisterUser(ctx context.Context, name, email, password string) (uuid.UUID, error) {
	var form model.SignupForm
	raw := map[string]string{"name": name, "email": email, "password": password}
	if fieldErrs := validate.Parse(raw, &form); len(fieldErrs) > 0 {
		return uuid.Nil, errors.Wrap(errs.ErrValidation, fieldErrs.String())
	}
	email = strings.ToLower(form.Email)
	taken, err := s.repo.UserEmailExists(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	if taken {
		return uuid.Nil, errs.ErrConflict
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "bcrypt")
	}
	return s.repo.CreateUser(ctx, model.User{
		Name:         form.Name,
		Email:        email,
		PasswordHash: string(hash),
	})
}

func (s *Service) Signup(ctx context.Context, raw map[string]string, start SessionStarter) model.ActionResult {
	var form model.SignupForm
	if fieldErrs := validate.Parse(raw, &form); len(fieldErrs) > 0 {
		return model.Invalid(fieldErrs)
	}
	id, err := s.RegisterUser(ctx, form.Name, form.Email, form.Password)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return model.Failure(model.ReasonConflict, msgEmailTaken)
		}
		return s.storageFailure("Signup", err, msgCreateUserFailed)
	}
	if err := start(id.String()); err != nil {
		return s.storageFailure("Signup session", err, msgCreateUserFailed)
	}
	return model.Ok("User created successfully")
}

func (s *Service) Authenticate(ctx context.Context, raw map[string]string, start SessionStarter) model.ActionResult {
	var form model.LoginForm
	if fieldErrs := validate.Parse(raw, &form); len(fieldErrs) > 0 {
		return model.Invalid(fieldErrs)
	}
	user, err := s.Login(ctx, form.Email, form.Password)
	if err != nil {
		s.log.Error("Authenticate", zap.Error(err))
		return model.Failure(model.ReasonStorage, msgAuthFailed)
	}
	if user == nil {
		return model.Failure(model.ReasonAuth, msgInvalidCredentials)
	}
	if err := start(user.ID); err != nil {
		s.log.Error("Authenticate session", zap.Error(err))
		return model.Failure(model.ReasonStorage, msgAuthFailed)
	}
	return model.Ok("Login successful")
}
