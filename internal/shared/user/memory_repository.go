package user

import (
	"context"
	"sync"
)

// MemoryRepository — in-memory Repository для STORAGE_BACKEND=memory и тестов
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]User
	names map[string]string // username -> id
	mails map[string]string // email -> id
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:  make(map[string]User),
		names: make(map[string]string),
		mails: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.names[u.Username]; ok {
		return ErrUsernameTaken
	}
	if _, ok := r.mails[u.Email]; ok {
		return ErrEmailTaken
	}

	r.byID[u.ID] = *u
	r.names[u.Username] = u.ID
	r.mails[u.Email] = u.ID
	return nil
}

func (r *MemoryRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.names[username])
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(r.mails[email])
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup(id)
}

// lookup вызывается под r.mu, возвращает копию
func (r *MemoryRepository) lookup(id string) (*User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}
