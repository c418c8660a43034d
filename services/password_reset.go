package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blog/models"
	"blog/utils"

	"github.com/rs/zerolog/log"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = 3 * 24 * time.Hour

// PasswordResetService issues and redeems stateless reset links. A token
// carries a fingerprint of the password hash it was issued against, so
// setting a new password invalidates every outstanding link.
type PasswordResetService struct {
	users   *UserService
	mailer  Mailer
	secret  string
	siteURL string
}

func NewPasswordResetService(users *UserService, mailer Mailer, secret, siteURL string) *PasswordResetService {
	return &PasswordResetService{users: users, mailer: mailer, secret: secret, siteURL: siteURL}
}

// Request mails a reset link when email belongs to an active user. Unknown
// addresses are not reported to the caller.
func (s *PasswordResetService) Request(ctx context.Context, form models.PasswordResetForm) error {
	if fe, err := models.AsFormErrors(form.Validate()); err != nil {
		return err
	} else if fe != nil {
		return fe
	}

	user, err := s.users.GetUserByEmail(ctx, form.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Info().Str("email", form.Email).Msg("Password reset requested for unknown email")
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	token, err := s.Token(user)
	if err != nil {
		return err
	}

	body := fmt.Sprintf(`You're receiving this email because you requested a password reset for your user account.

Please go to the following page and choose a new password:

%s/reset/%s/

Your username, in case you've forgotten: %s
`, s.siteURL, token, user.Username)

	return s.mailer.Send(ctx, user.Email, "Password reset", body)
}

func (s *PasswordResetService) Token(user *models.User) (string, error) {
	return utils.GenerateResetToken(s.secret, user.ID, user.PasswordFingerprint(), ResetTokenTTL)
}

// Validate resolves a token to its user, or ErrInvalidToken.
func (s *PasswordResetService) Validate(ctx context.Context, token string) (*models.User, error) {
	claims, err := utils.ParseResetToken(s.secret, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive || claims.Fingerprint != user.PasswordFingerprint() {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// Confirm sets a new password using a valid token.
func (s *PasswordResetService) Confirm(ctx context.Context, token string, form models.SetPasswordForm) error {
	user, err := s.Validate(ctx, token)
	if err != nil {
		return err
	}
	if fe, err := models.AsFormErrors(form.Validate()); err != nil {
		return err
	} else if fe != nil {
		return fe
	}
	return s.users.SetPassword(ctx, user, form.NewPassword)
}
