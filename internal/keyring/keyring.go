package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/nutrisnap/internal/constants"
)

var (
	// ErrNotFound is returned when no session is stored in the keyring
	ErrNotFound = errors.New("session not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// account scopes the stored cookie to one backend so switching --api-url
// does not replay a session against the wrong server.
func account(apiURL string) string {
	return constants.DefaultKeyringUser + "@" + apiURL
}

// GetSession retrieves the remembered session cookie for apiURL.
// Returns ErrNotFound if nothing is stored.
func GetSession(apiURL string) (string, error) {
	cookie, err := keyring.Get(constants.AppName, account(apiURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return cookie, nil
}

// SetSession stores the session cookie for apiURL.
func SetSession(apiURL, cookie string) error {
	if cookie == "" {
		return errors.New("session cookie cannot be empty")
	}
	if err := keyring.Set(constants.AppName, account(apiURL), cookie); err != nil {
		return fmt.Errorf("failed to store session in keyring: %w", err)
	}
	return nil
}

// DeleteSession forgets the session for apiURL.
func DeleteSession(apiURL string) error {
	err := keyring.Delete(constants.AppName, account(apiURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
