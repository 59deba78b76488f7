package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"server-notes/internal/goerrors"
	"server-notes/internal/schemas"
)

// fakeUserStore is an in-memory UserStore with the same uniqueness and compare-and-set rules as Postgres.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*schemas.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*schemas.User{}}
}

func (f *fakeUserStore) lookup(match func(*schemas.User) bool) (*schemas.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, user := range f.users {
		if match(user) {
			userCopy := *user
			return &userCopy, nil
		}
	}
	return nil, goerrors.UserNotFound
}

func (f *fakeUserStore) FindByUsernameOrEmail(_ context.Context, identifier string) (*schemas.User, error) {
	identifier = strings.ToLower(identifier)
	return f.lookup(func(u *schemas.User) bool { return u.Username == identifier || u.Email == identifier })
}

func (f *fakeUserStore) FindByUsername(_ context.Context, username string) (*schemas.User, error) {
	username = strings.ToLower(username)
	return f.lookup(func(u *schemas.User) bool { return u.Username == username })
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*schemas.User, error) {
	return f.get(strings.ToLower(email))
}

func (f *fakeUserStore) get(email string) (*schemas.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[email]
	if !ok {
		return nil, goerrors.UserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (f *fakeUserStore) Create(_ context.Context, user *schemas.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user.Username = strings.ToLower(user.Username)
	user.Email = strings.ToLower(user.Email)
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return goerrors.UsernameTaken
		}
		if existing.Email == user.Email {
			return goerrors.EmailTaken
		}
	}

	id := uuid.New()
	createdAt := time.Now()
	user.ID = &id
	user.CreatedAt = &createdAt
	userCopy := *user
	f.users[user.Email] = &userCopy
	return nil
}

// update runs change on the stored user under the lock.
func (f *fakeUserStore) update(email string, change func(*schemas.User) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[strings.ToLower(email)]
	if !ok {
		return goerrors.UserNotFound
	}
	return change(user)
}

func (f *fakeUserStore) SetVerificationToken(_ context.Context, email, token string) error {
	return f.update(email, func(u *schemas.User) error {
		if u.IsEmailVerified {
			return goerrors.AlreadyVerified
		}
		u.VerificationToken = &token
		return nil
	})
}

func (f *fakeUserStore) MarkVerified(_ context.Context, email, token string) error {
	return f.update(email, func(u *schemas.User) error {
		if u.IsEmailVerified {
			return goerrors.AlreadyVerified
		}
		if u.VerificationToken == nil || *u.VerificationToken != token {
			return goerrors.InvalidToken
		}
		u.IsEmailVerified = true
		u.VerificationToken = nil
		return nil
	})
}

func (f *fakeUserStore) SetResetToken(_ context.Context, email, token string, expiresAt time.Time) error {
	return f.update(email, func(u *schemas.User) error {
		u.ResetToken = &token
		u.ResetTokenExpires = &expiresAt
		return nil
	})
}

func (f *fakeUserStore) ClearResetToken(_ context.Context, email, token string) error {
	return f.update(email, func(u *schemas.User) error {
		if u.ResetToken != nil && *u.ResetToken == token {
			u.ResetToken = nil
			u.ResetTokenExpires = nil
		}
		return nil
	})
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, email, passwordHash string) error {
	return f.update(email, func(u *schemas.User) error {
		u.Password = passwordHash
		return nil
	})
}

func (f *fakeUserStore) ResetPassword(_ context.Context, email, token, passwordHash string) error {
	err := f.update(email, func(u *schemas.User) error {
		if u.ResetToken == nil || *u.ResetToken != token {
			return goerrors.InvalidToken
		}
		u.Password = passwordHash
		u.ResetToken = nil
		u.ResetTokenExpires = nil
		return nil
	})
	if errors.Is(err, goerrors.UserNotFound) {
		return goerrors.InvalidToken
	}
	return err
}
