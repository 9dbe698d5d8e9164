package devbackend

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// User is an operator account the backend accepts at auth/login
type User struct {
	Username     string
	DisplayName  string
	PasswordHash string
}

func NewUser(username, displayName, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", username, err)
	}
	return &User{Username: username, DisplayName: displayName, PasswordHash: hash}, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// userRepo is an in-memory user store
type userRepo struct {
	mu    sync.RWMutex
	users map[string]*User
}

func newUserRepo() *userRepo {
	return &userRepo{users: make(map[string]*User)}
}

func (r *userRepo) Upsert(u *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.Username] = u
}

func (r *userRepo) Get(username string) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	return u, ok
}
