// Package services implements the account flows of the server: signup, email verification, login and
// password recovery. Handlers translate HTTP to these calls, the services never see a request.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"server-notes/internal/config"
	"server-notes/internal/goerrors"
	"server-notes/internal/managers"
	"server-notes/internal/schemas"
	"server-notes/internal/store"
	"server-notes/internal/utils"
)

// MinPasswordLength is the shortest password accepted anywhere.
const MinPasswordLength = 6

const (
	throttleVerify = "verify-email"
	throttleReset  = "reset-password"
)

// AuthService orchestrates the account state machine on top of the credential store, the token service
// and the mail notifier.
type AuthService struct {
	Users    store.UserStore
	Tokens   managers.JWTMgr
	Mail     managers.MailMgr
	Throttle managers.ThrottleMgr

	FrontendURL     string
	SessionTTL      time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration

	now func() time.Time
}

// NewAuthService wires the auth flows with the token lifetimes and frontend URL from cfg.
func NewAuthService(users store.UserStore, tokens managers.JWTMgr, mail managers.MailMgr, throttle managers.ThrottleMgr,
	cfg *config.Config) *AuthService {
	return &AuthService{
		Users:           users,
		Tokens:          tokens,
		Mail:            mail,
		Throttle:        throttle,
		FrontendURL:     strings.TrimSuffix(cfg.FrontendURL, "/"),
		SessionTTL:      cfg.Token.SessionTTL,
		VerificationTTL: cfg.Token.VerificationTTL,
		ResetTTL:        cfg.Token.ResetTTL,
		now:             time.Now,
	}
}

// WithClock replaces the time source used for reset expiries.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

// Signup registers a new, unverified user and sends the verification mail.
// The user stays registered if the mail cannot be sent, which is reported as EmailNotSent.
func (s *AuthService) Signup(ctx context.Context, request *schemas.SignupRequest) error {
	username := strings.ToLower(strings.TrimSpace(request.Username))
	email := strings.ToLower(strings.TrimSpace(request.Email))
	if username == "" || email == "" || request.Password == "" {
		return goerrors.BadRequest
	}
	if err := checkPasswordLength(request.Password); err != nil {
		return err
	}

	hashedPassword, err := hashPassword(request.Password)
	if err != nil {
		return err
	}

	token, err := s.Tokens.Issue(email, managers.PurposeVerifyEmail, s.VerificationTTL)
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}

	user := &schemas.User{
		Username:          username,
		Email:             email,
		Password:          hashedPassword,
		VerificationToken: &token,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return err
	}
	utils.LogMessageWithFields(ctx, "info", "Registered user "+username)

	return s.sendVerificationMail(ctx, user, token)
}

// ResendVerification issues a fresh verification token, invalidating the previous one, and mails it.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return goerrors.AlreadyVerified
	}
	if err := s.allow(ctx, throttleVerify, user.Email); err != nil {
		return err
	}

	token, err := s.Tokens.Issue(user.Email, managers.PurposeVerifyEmail, s.VerificationTTL)
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}
	if err := s.Users.SetVerificationToken(ctx, user.Email, token); err != nil {
		return err
	}

	return s.sendVerificationMail(ctx, user, token)
}

// VerifyEmail marks the owner of token as verified. Replaying a used token reports AlreadyVerified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	claims, err := s.Tokens.Verify(token, managers.PurposeVerifyEmail)
	if err != nil {
		return tokenError(err)
	}

	if err := s.Users.MarkVerified(ctx, claims.Subject, token); err != nil {
		return err
	}
	utils.LogMessageWithFields(ctx, "info", "Verified email of "+claims.Subject)
	return nil
}

// Login checks the credentials of the user identified by username or email and issues a session token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, error) {
	user, err := s.Users.FindByUsernameOrEmail(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return "", err
	}
	if !user.IsEmailVerified {
		return "", goerrors.EmailNotVerified
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", goerrors.InvalidCredentials
	}

	token, err := s.Tokens.Issue(user.Username, managers.PurposeSession, s.SessionTTL)
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}
	return token, nil
}

// ForgotPassword starts a password reset, superseding any reset still pending, and mails the reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.allow(ctx, throttleReset, user.Email); err != nil {
		return err
	}

	token, err := s.Tokens.Issue(user.Email, managers.PurposeResetPassword, s.ResetTTL)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	if err := s.Users.SetResetToken(ctx, user.Email, token, s.now().Add(s.ResetTTL)); err != nil {
		return err
	}

	link := s.FrontendURL + "/reset-password/" + token
	if err := s.Mail.SendPasswordResetMail(ctx, user.Email, user.Username, link); err != nil {
		return fmt.Errorf("%w: %v", goerrors.EmailNotSent, err)
	}
	return nil
}

// ResetPassword sets a new password if token is the pending, unexpired reset token of its subject.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := s.Tokens.Verify(token, managers.PurposeResetPassword)
	if err != nil {
		if errors.Is(err, managers.ErrTokenExpired) && claims != nil {
			s.clearExpiredReset(ctx, claims.Subject, token)
		}
		return tokenError(err)
	}
	if err := checkPasswordLength(newPassword); err != nil {
		return err
	}

	user, err := s.Users.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return err
	}
	if !user.HasPendingReset() || *user.ResetToken != token {
		return goerrors.InvalidToken
	}
	if !s.now().Before(*user.ResetTokenExpires) {
		s.clearExpiredReset(ctx, user.Email, token)
		return goerrors.TokenExpired
	}

	hashedPassword, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Users.ResetPassword(ctx, user.Email, token, hashedPassword); err != nil {
		return err
	}
	utils.LogMessageWithFields(ctx, "info", "Reset password of "+user.Username)
	return nil
}

// ChangePassword replaces the password of a logged-in user after checking the old one.
func (s *AuthService) ChangePassword(ctx context.Context, username string, request *schemas.ChangePasswordRequest) error {
	user, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.OldPassword)); err != nil {
		return goerrors.InvalidCredentials
	}
	if err := checkPasswordLength(request.NewPassword); err != nil {
		return err
	}

	hashedPassword, err := hashPassword(request.NewPassword)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, user.Email, hashedPassword)
}

// Profile returns the public view of a user.
func (s *AuthService) Profile(ctx context.Context, username string) (*schemas.UserDTO, error) {
	user, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	userDto := &schemas.UserDTO{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		IsEmailVerified: user.IsEmailVerified,
	}
	if user.CreatedAt != nil {
		userDto.CreatedAt = user.CreatedAt.Format(time.RFC3339)
	}
	return userDto, nil
}

func (s *AuthService) sendVerificationMail(ctx context.Context, user *schemas.User, token string) error {
	link := s.FrontendURL + "/verify-email/" + token
	if err := s.Mail.SendVerificationMail(ctx, user.Email, user.Username, link); err != nil {
		return fmt.Errorf("%w: %v", goerrors.EmailNotSent, err)
	}
	return nil
}

// allow applies the mail cooldown. An unreachable throttle lets the request through.
func (s *AuthService) allow(ctx context.Context, action, email string) error {
	allowed, err := s.Throttle.Allow(ctx, action, email)
	if err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "warn", "Throttle unavailable", err)
		return nil
	}
	if !allowed {
		return goerrors.TooManyRequests
	}
	return nil
}

// clearExpiredReset drops an expired reset token. Failing to do so only leaves a token that can never be used.
func (s *AuthService) clearExpiredReset(ctx context.Context, email, token string) {
	if err := s.Users.ClearResetToken(ctx, email, token); err != nil {
		utils.LogMessageWithFieldsAndError(ctx, "warn", "Could not clear expired reset token", err)
	}
}

func tokenError(err error) error {
	if errors.Is(err, managers.ErrTokenExpired) {
		return goerrors.TokenExpired
	}
	return goerrors.InvalidToken
}

func checkPasswordLength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return goerrors.PasswordTooShort
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", goerrors.BadRequest
		}
		return "", err
	}
	return string(hashedPassword), nil
}
