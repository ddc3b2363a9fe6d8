package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/repository"
	"github.com/dom/account-service/internal/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MemoryUserRepository is an in-memory repository.UserRepository with the
// same uniqueness and not-found semantics as the Postgres one.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]*domain.User)}
}

var _ repository.UserRepository = (*MemoryUserRepository)(nil)

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.WatchHistory == nil {
		user.WatchHistory = datatypes.JSONSlice[uuid.UUID]{}
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now

	r.users[user.ID] = clone(user)
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *MemoryUserRepository) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *MemoryUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Email != nil {
		for otherID, other := range r.users {
			if otherID != id && other.Email == *patch.Email {
				return nil, repository.ErrDuplicate
			}
		}
		u.Email = *patch.Email
	}
	if patch.Fullname != nil {
		u.Fullname = *patch.Fullname
	}
	if patch.Avatar != nil {
		u.Avatar = *patch.Avatar
	}
	if patch.CoverImage != nil {
		u.CoverImage = *patch.CoverImage
	}
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (r *MemoryUserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if token == nil {
		u.RefreshToken = nil
	} else {
		v := *token
		u.RefreshToken = &v
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryUserRepository) RotateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != current {
		return repository.ErrNotFound
	}
	u.RefreshToken = &next
	u.UpdatedAt = time.Now()
	return nil
}

// StoredRefreshToken returns the refresh token currently stored for id.
func (r *MemoryUserRepository) StoredRefreshToken(id uuid.UUID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[id]; ok && u.RefreshToken != nil {
		return *u.RefreshToken
	}
	return ""
}

func clone(u *domain.User) *domain.User {
	c := *u
	c.WatchHistory = append(datatypes.JSONSlice[uuid.UUID]{}, u.WatchHistory...)
	if u.RefreshToken != nil {
		v := *u.RefreshToken
		c.RefreshToken = &v
	}
	return &c
}

// FakeUploader is a storage.Uploader that records what it was asked to store.
type FakeUploader struct {
	mu    sync.Mutex
	paths []string
	// existed records, per call, whether the local file was present.
	existed []bool
	err     error
	delay   time.Duration
	noURL   bool
}

func NewFakeUploader() *FakeUploader {
	return &FakeUploader{}
}

var _ storage.Uploader = (*FakeUploader)(nil)

// FailWith makes every following upload return err.
func (f *FakeUploader) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Delay makes every following upload wait d, or until ctx is done.
func (f *FakeUploader) Delay(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
}

// ReturnEmptyURL makes every following upload succeed without a URL.
func (f *FakeUploader) ReturnEmptyURL() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.noURL = true
}

func (f *FakeUploader) Upload(ctx context.Context, localPath string) (*storage.UploadResult, error) {
	f.mu.Lock()
	_, statErr := os.Stat(localPath)
	f.paths = append(f.paths, localPath)
	f.existed = append(f.existed, statErr == nil)
	err, delay, noURL := f.err, f.delay, f.noURL
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if noURL {
		return &storage.UploadResult{}, nil
	}

	key := "media/" + uuid.NewString() + filepath.Ext(localPath)
	return &storage.UploadResult{URL: "https://cdn.test/" + key, Key: key}, nil
}

// Paths returns the local paths passed to Upload, in call order.
func (f *FakeUploader) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

// AllFilesExisted reports whether every upload saw its local file on disk.
func (f *FakeUploader) AllFilesExisted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ok := range f.existed {
		if !ok {
			return false
		}
	}
	return true
}
