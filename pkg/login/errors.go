package login

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned for any failed username/password check.
// The same value covers unknown usernames and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrLoginNotFound is returned when a login record does not exist.
var ErrLoginNotFound = errors.New("login not found")

// ErrUsernameAlreadyExists is returned when attempting to create a login
// with a username that already exists.
type ErrUsernameAlreadyExists struct {
	Username string
}

func (e ErrUsernameAlreadyExists) Error() string {
	return fmt.Sprintf("username already exists: %s", e.Username)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrLoginNotFound)
}
