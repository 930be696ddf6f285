package users

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrInvalidCredentials = errors.New("invalid credentials, try again")

// ID accepts both numeric and string ids from the user file.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*id = ID(text)
		return nil
	}
	*id = ID(data)
	return nil
}

type User struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Avatar   string `json:"avatar"`
}

// Public drops the password before the user is persisted or shown.
func (u User) Public() User {
	u.Password = ""
	return u
}

type Directory struct {
	users []User
}

func NewDirectory(users []User) *Directory {
	return &Directory{users: users}
}

func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read user directory: %w", err)
	}

	var list []User
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode user directory: %w", err)
	}
	return NewDirectory(list), nil
}

func (d *Directory) Len() int {
	return len(d.users)
}

// Authenticate matches login against the email (case-insensitive) or as a
// substring of the name. The first user in file order wins.
func (d *Directory) Authenticate(login, password string) (User, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return User{}, ErrInvalidCredentials
	}

	for _, user := range d.users {
		if user.Password != password {
			continue
		}
		if strings.ToLower(user.Email) == login || strings.Contains(strings.ToLower(user.Name), login) {
			return user, nil
		}
	}
	return User{}, ErrInvalidCredentials
}
