package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"server-notes/internal/goerrors"
	"server-notes/internal/interfaces"
	"server-notes/internal/schemas"
	"server-notes/internal/utils"
)

const (
	userColumns = "user_id, username, email, password, is_email_verified, verification_token, reset_token, reset_token_expires, created_at"

	usernameConstraint = "users_username_key"
)

// UserStore is the credential store. Usernames and emails are stored in lowercase and matched exactly.
type UserStore interface {
	FindByUsernameOrEmail(ctx context.Context, identifier string) (*schemas.User, error)
	FindByUsername(ctx context.Context, username string) (*schemas.User, error)
	FindByEmail(ctx context.Context, email string) (*schemas.User, error)
	Create(ctx context.Context, user *schemas.User) error
	SetVerificationToken(ctx context.Context, email, token string) error
	MarkVerified(ctx context.Context, email, token string) error
	SetResetToken(ctx context.Context, email, token string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, email, token string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	ResetPassword(ctx context.Context, email, token, passwordHash string) error
}

// PostgresUserStore implements UserStore on the users table.
type PostgresUserStore struct {
	Pool    interfaces.PgxPoolIface
	Timeout time.Duration
}

// NewUserStore returns a UserStore whose calls give up after timeout.
func NewUserStore(pool interfaces.PgxPoolIface, timeout time.Duration) UserStore {
	return &PostgresUserStore{Pool: pool, Timeout: timeout}
}

func scanUser(row pgx.Row) (*schemas.User, error) {
	var (
		rawId     string
		createdAt time.Time
	)
	user := &schemas.User{}

	if err := row.Scan(&rawId, &user.Username, &user.Email, &user.Password, &user.IsEmailVerified,
		&user.VerificationToken, &user.ResetToken, &user.ResetTokenExpires, &createdAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawId)
	if err != nil {
		return nil, err
	}
	user.ID = &id
	user.CreatedAt = &createdAt
	return user, nil
}

func (s *PostgresUserStore) findOne(ctx context.Context, where string, args ...interface{}) (*schemas.User, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	queryString := "SELECT " + userColumns + " FROM users WHERE " + where
	user, err := scanUser(s.Pool.QueryRow(queryCtx, queryString, args...))
	if err != nil {
		return nil, storeError(err, goerrors.UserNotFound)
	}
	return user, nil
}

// FindByUsernameOrEmail looks a user up by either identifier.
func (s *PostgresUserStore) FindByUsernameOrEmail(ctx context.Context, identifier string) (*schemas.User, error) {
	return s.findOne(ctx, "username = $1 OR email = $1", strings.ToLower(identifier))
}

func (s *PostgresUserStore) FindByUsername(ctx context.Context, username string) (*schemas.User, error) {
	return s.findOne(ctx, "username = $1", strings.ToLower(username))
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*schemas.User, error) {
	return s.findOne(ctx, "email = $1", strings.ToLower(email))
}

// Create inserts a new user. Taken usernames and emails are reported as UsernameTaken or EmailTaken,
// whether they are found by the lookup or only by the unique indexes on insert.
func (s *PostgresUserStore) Create(ctx context.Context, user *schemas.User) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	tx, transactionCtx, txCancel, err := utils.BeginTransaction(queryCtx, s.Pool)
	if err != nil {
		return storeError(err, nil)
	}
	defer utils.RollbackTransaction(queryCtx, tx, txCancel)

	user.Username = strings.ToLower(user.Username)
	user.Email = strings.ToLower(user.Email)

	// Check if the username or email is taken
	queryString := "SELECT username, email FROM users WHERE username = $1 OR email = $2"
	rows, err := tx.Query(transactionCtx, queryString, user.Username, user.Email)
	if err != nil {
		return storeError(err, nil)
	}
	var takenErr error
	for rows.Next() {
		var username, email string
		if err := rows.Scan(&username, &email); err != nil {
			rows.Close()
			return storeError(err, nil)
		}
		if username == user.Username {
			takenErr = goerrors.UsernameTaken
			break
		}
		takenErr = goerrors.EmailTaken
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return storeError(err, nil)
	}
	if takenErr != nil {
		return takenErr
	}

	if user.ID == nil {
		id := uuid.New()
		user.ID = &id
	}
	if user.CreatedAt == nil {
		createdAt := time.Now()
		user.CreatedAt = &createdAt
	}

	queryString = "INSERT INTO users (" + userColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)"
	if _, err := tx.Exec(transactionCtx, queryString, *user.ID, user.Username, user.Email, user.Password,
		user.IsEmailVerified, user.VerificationToken, user.ResetToken, user.ResetTokenExpires, *user.CreatedAt); err != nil {
		return duplicateError(err)
	}

	if err := utils.CommitTransaction(transactionCtx, tx); err != nil {
		return duplicateError(err)
	}
	return nil
}

// duplicateError maps unique violations on insert to the taken identity.
func duplicateError(err error) error {
	constraint, ok := uniqueViolation(err)
	switch {
	case !ok:
		return storeError(err, nil)
	case constraint == usernameConstraint:
		return goerrors.UsernameTaken
	default:
		return goerrors.EmailTaken
	}
}

// exec runs a single statement and returns notFound if it touched no row. A nil notFound accepts that.
func (s *PostgresUserStore) exec(ctx context.Context, notFound error, queryString string, args ...interface{}) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	tag, err := s.Pool.Exec(queryCtx, queryString, args...)
	if err != nil {
		return storeError(err, nil)
	}
	if tag.RowsAffected() == 0 && notFound != nil {
		return notFound
	}
	return nil
}

// SetVerificationToken replaces the pending verification token of an unverified user.
func (s *PostgresUserStore) SetVerificationToken(ctx context.Context, email, token string) error {
	queryString := "UPDATE users SET verification_token = $1 WHERE email = $2 AND is_email_verified = FALSE"
	err := s.exec(ctx, goerrors.UserNotFound, queryString, token, strings.ToLower(email))
	if errors.Is(err, goerrors.UserNotFound) {
		return s.verificationFailure(ctx, email)
	}
	return err
}

// MarkVerified flips the user to verified if token is the pending verification token.
// A verified user reports AlreadyVerified, a token that is not the pending one reports InvalidToken.
func (s *PostgresUserStore) MarkVerified(ctx context.Context, email, token string) error {
	queryString := `UPDATE users SET is_email_verified = TRUE, verification_token = NULL
					WHERE email = $1 AND verification_token = $2 AND is_email_verified = FALSE`
	err := s.exec(ctx, goerrors.InvalidToken, queryString, strings.ToLower(email), token)
	if errors.Is(err, goerrors.InvalidToken) {
		return s.verificationFailure(ctx, email)
	}
	return err
}

// verificationFailure explains why a verification update matched no row.
func (s *PostgresUserStore) verificationFailure(ctx context.Context, email string) error {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.IsEmailVerified {
		return goerrors.AlreadyVerified
	}
	return goerrors.InvalidToken
}

// SetResetToken stores a pending password reset, overwriting any earlier one.
func (s *PostgresUserStore) SetResetToken(ctx context.Context, email, token string, expiresAt time.Time) error {
	queryString := "UPDATE users SET reset_token = $1, reset_token_expires = $2 WHERE email = $3"
	return s.exec(ctx, goerrors.UserNotFound, queryString, token, expiresAt, strings.ToLower(email))
}

// ClearResetToken drops the pending password reset if token is still the pending one.
// Clearing a reset that was already superseded or completed is a no-op.
func (s *PostgresUserStore) ClearResetToken(ctx context.Context, email, token string) error {
	queryString := "UPDATE users SET reset_token = NULL, reset_token_expires = NULL WHERE email = $1 AND reset_token = $2"
	return s.exec(ctx, nil, queryString, strings.ToLower(email), token)
}

// UpdatePassword replaces the password hash of a user.
func (s *PostgresUserStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	queryString := "UPDATE users SET password = $1 WHERE email = $2"
	return s.exec(ctx, goerrors.UserNotFound, queryString, passwordHash, strings.ToLower(email))
}

// ResetPassword stores the new password hash and completes the pending reset in one statement,
// as long as token is still the pending reset token.
func (s *PostgresUserStore) ResetPassword(ctx context.Context, email, token, passwordHash string) error {
	queryString := `UPDATE users SET password = $1, reset_token = NULL, reset_token_expires = NULL
					WHERE email = $2 AND reset_token = $3`
	return s.exec(ctx, goerrors.InvalidToken, queryString, passwordHash, strings.ToLower(email), token)
}
