package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sportshop-be/internal/logger"
	"sportshop-be/internal/notify"

	"go.uber.org/zap"
)

const confirmationTTL = 15 * time.Minute

type Service interface {
	Register(ctx context.Context, email, password string) (*User, error)
	Confirm(ctx context.Context, email, code string) error
	Login(ctx context.Context, email, password string) (string, *User, error)
	Profile(ctx context.Context, userID int64) (*User, error)
	UpdateProfile(ctx context.Context, input UpdateProfileInput) (*User, error)
}

type service struct {
	repo     Repository
	tokens   *Tokens
	notifier notify.Notifier
	newCode  func() (string, error)
}

func NewService(repo Repository, tokens *Tokens, notifier notify.Notifier) Service {
	return &service{
		repo:     repo,
		tokens:   tokens,
		notifier: notifier,
		newCode:  NewConfirmationCode,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an unconfirmed user and mails a confirmation code.
func (s *service) Register(ctx context.Context, email, password string) (*User, error) {
	email = normalizeEmail(email)
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	hashed, err := HashPassword(password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.Create(ctx, email, hashed, RoleUser)
	if err != nil {
		return nil, err
	}

	if err := s.sendCode(ctx, u); err != nil {
		log.Warn("confirmation code not delivered", zap.Int64("user_id", u.ID), zap.Error(err))
	}

	log.Info("register service completed", zap.Int64("user_id", u.ID))
	return u, nil
}

func (s *service) sendCode(ctx context.Context, u *User) error {
	code, err := s.newCode()
	if err != nil {
		return err
	}
	if err := s.repo.SaveConfirmation(ctx, u.ID, code, time.Now().Add(confirmationTTL)); err != nil {
		return err
	}
	return s.notifier.Notify(ctx, u.Email, notify.Message{
		Subject: "Confirm your email",
		Body: fmt.Sprintf("Your confirmation code is %s. It expires in %d minutes.",
			code, int(confirmationTTL.Minutes())),
	})
}

func (s *service) Confirm(ctx context.Context, email, code string) error {
	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		return ErrInvalidCode
	}
	if err != nil {
		return err
	}
	if u.Confirmed {
		return nil
	}

	ok, err := s.repo.Confirm(ctx, u.ID, strings.TrimSpace(code))
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidCode
	}

	logger.FromCtx(ctx).Info("email confirmed", zap.Int64("user_id", u.ID))
	return nil
}

func (s *service) Login(ctx context.Context, email, password string) (string, *User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	u, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		log.Info("login failed: unknown email")
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !CheckPasswordHash(password, u.Password) {
		log.Info("login failed: password mismatch", zap.Int64("user_id", u.ID))
		return "", nil, ErrInvalidCredentials
	}
	if !u.Confirmed {
		return "", nil, ErrNotConfirmed
	}

	token, err := s.tokens.Generate(*u)
	if err != nil {
		log.Error("failed to generate jwt", zap.Int64("user_id", u.ID), zap.Error(err))
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) Profile(ctx context.Context, userID int64) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*User, error) {
	if !input.HasChanges() {
		return nil, ErrNothingToEdit
	}
	for _, f := range []*string{input.Name, input.Phone, input.Address} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	return s.repo.UpdateProfile(ctx, input)
}
