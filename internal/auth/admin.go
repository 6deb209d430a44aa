package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/config"
)

// AdminVerifier checks the single admin credential pair held in config.
type AdminVerifier struct {
	id   string
	hash string
}

func NewAdminVerifier(cfg config.AdminConfig) (*AdminVerifier, error) {
	if cfg.ID == "" {
		return nil, errors.New("admin id is empty")
	}

	hash := cfg.PasswordHash
	if hash == "" {
		if cfg.Password == "" {
			return nil, errors.New("admin password is empty")
		}
		var err error
		hash, err = HashPassword(cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	}

	return &AdminVerifier{id: cfg.ID, hash: hash}, nil
}

func (v *AdminVerifier) ID() string {
	return v.id
}

func (v *AdminVerifier) Verify(id, password string) bool {
	idMatch := subtle.ConstantTimeCompare([]byte(id), []byte(v.id)) == 1
	passwordMatch := CheckPassword(v.hash, password)
	return idMatch && passwordMatch
}
