// Package account holds the demo user directory of articles-api and the
// login endpoint that exchanges credentials for a bearer token.
package account

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kbukum/errkit/auth/password"
)

// UserConfig is a configured user. Either Password (hashed at startup) or
// PasswordHash must be set.
type UserConfig struct {
	ID           string `yaml:"id" mapstructure:"id"`
	Name         string `yaml:"name" mapstructure:"name"`
	Email        string `yaml:"email" mapstructure:"email"`
	Role         string `yaml:"role" mapstructure:"role"`
	Password     string `yaml:"password" mapstructure:"password"`
	PasswordHash string `yaml:"password_hash" mapstructure:"password_hash"`
}

// User is a known account.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         string
	PasswordHash string
}

// Directory looks users up by email.
type Directory struct {
	hasher  password.Hasher
	byEmail map[string]User
	// dummy is verified for unknown emails so both paths cost the same.
	dummy string
}

// NewDirectory hashes plain passwords and indexes users by email.
func NewDirectory(users []UserConfig, hasher password.Hasher) (*Directory, error) {
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("account: dummy hash: %w", err)
	}

	d := &Directory{hasher: hasher, byEmail: make(map[string]User, len(users)), dummy: dummy}
	for _, u := range users {
		email := normalizeEmail(u.Email)
		if u.ID == "" || email == "" {
			return nil, fmt.Errorf("account: user %q needs id and email", u.Email)
		}
		if _, dup := d.byEmail[email]; dup {
			return nil, fmt.Errorf("account: duplicate email %q", email)
		}

		hash := u.PasswordHash
		if hash == "" {
			if u.Password == "" {
				return nil, fmt.Errorf("account: user %q has no password", email)
			}
			if hash, err = hasher.Hash(u.Password); err != nil {
				return nil, fmt.Errorf("account: hash password of %q: %w", email, err)
			}
		}
		d.byEmail[email] = User{ID: u.ID, Name: u.Name, Email: email, Role: u.Role, PasswordHash: hash}
	}
	return d, nil
}

// ErrInvalidCredentials is returned by Authenticate for unknown emails and
// wrong passwords alike.
var ErrInvalidCredentials = errors.New("account: invalid credentials")

// Authenticate returns the user when email and password match.
func (d *Directory) Authenticate(email, plain string) (*User, error) {
	u, ok := d.byEmail[normalizeEmail(email)]
	hash := u.PasswordHash
	if !ok {
		hash = d.dummy
	}

	err := d.hasher.Verify(plain, hash)
	switch {
	case err == nil && ok:
		return &u, nil
	case err == nil, errors.Is(err, password.ErrMismatch):
		return nil, ErrInvalidCredentials
	default:
		return nil, err
	}
}

// Len is the number of known users.
func (d *Directory) Len() int { return len(d.byEmail) }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
