package credentials

// keyring.go keeps the librarycli session token in the OS keychain.

import (
	"encoding/json"
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "libraryhub-cli"
	tokenKey    = "session"
)

// ErrNotLoggedIn is returned by Load when no session is stored.
var ErrNotLoggedIn = errors.New("not logged in, run `librarycli login` first")

type Session struct {
	Token  string `json:"token"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	APIURL string `json:"api_url"`
}

func Save(s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return keyring.Set(serviceName, tokenKey, string(data))
}

func Load() (*Session, error) {
	value, err := keyring.Get(serviceName, tokenKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(value), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete forgets the stored session; a missing session is not an error.
func Delete() error {
	if err := keyring.Delete(serviceName, tokenKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
