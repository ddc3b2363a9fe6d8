package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username     string
	fullname     string
	email        string
	password     string
	avatar       string
	watchHistory []uuid.UUID
}

// NewUserBuilder creates a new UserBuilder with unique default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", suffix),
		fullname: "Test User",
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
		avatar:   "https://cdn.test/media/avatar.png",
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithFullname sets the full name
func (b *UserBuilder) WithFullname(fullname string) *UserBuilder {
	b.fullname = fullname
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithWatchHistory sets the watched video ids
func (b *UserBuilder) WithWatchHistory(ids ...uuid.UUID) *UserBuilder {
	b.watchHistory = ids
	return b
}

// Build stores the user through repo and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, repo repository.UserRepository) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		Fullname:     b.fullname,
		Email:        b.email,
		Avatar:       b.avatar,
		WatchHistory: datatypes.JSONSlice[uuid.UUID](b.watchHistory),
		PasswordHash: string(hashedPassword),
	}

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// Session holds what a successful login hands back to the client
type Session struct {
	AccessToken  string
	RefreshToken string
	Cookies      []*http.Cookie
}

// LoginResponse matches the data of the login envelope
type LoginResponse struct {
	User         domain.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

// BuildAndAuthenticate registers the user via the API, logs in and returns
// the created user with its session
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.PublicUser, *Session) {
	t.Helper()

	body, contentType := NewMultipartBody(t, map[string]string{
		"username": b.username,
		"fullname": b.fullname,
		"email":    b.email,
		"password": b.password,
	}, map[string]string{
		"avatar": "avatar.png",
	})

	resp, err := http.Post(ts.APIURL("/register"), contentType, body)
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected register status code: %d", resp.StatusCode)
	}

	loginBody, _ := json.Marshal(map[string]string{
		"username": b.username,
		"password": b.password,
	})
	resp, err = http.Post(ts.APIURL("/login"), "application/json", bytes.NewBuffer(loginBody))
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var login LoginResponse
	DecodeEnvelope(t, resp, &login)

	return &login.User, &Session{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
		Cookies:      resp.Cookies(),
	}
}

// NewMultipartBody builds a multipart form. files maps a field name to the
// file name sent for it; each file carries a few bytes of fake image data.
func NewMultipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	for field, name := range files {
		part, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("failed to create form file %s: %v", field, err)
		}
		part.Write([]byte("\x89PNG fake image data"))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	return body, mw.FormDataContentType()
}

// TempImage writes a small file into a per-test directory and returns its path
func TempImage(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("\x89PNG fake image data"), 0o600); err != nil {
		t.Fatalf("failed to write temp image: %v", err)
	}
	return path
}

// FileExists reports whether path is present on disk
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
