package postgres_test

import (
	"context"
	"testing"

	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/repository"
	"github.com/dom/account-service/internal/repository/postgres"
	"github.com/dom/account-service/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{
			name: "successful creation",
			user: &domain.User{
				Username:     "alice",
				Fullname:     "Alice",
				Email:        "alice@x.com",
				Avatar:       "https://cdn.example.com/a.png",
				PasswordHash: "hashedpassword",
			},
		},
		{
			name: "duplicate username",
			user: &domain.User{
				Username:     "alice",
				Fullname:     "Other Alice",
				Email:        "other@x.com",
				Avatar:       "https://cdn.example.com/b.png",
				PasswordHash: "hashedpassword2",
			},
			wantErr: repository.ErrDuplicate,
		},
		{
			name: "duplicate email",
			user: &domain.User{
				Username:     "alice2",
				Fullname:     "Alice Two",
				Email:        "alice@x.com",
				Avatar:       "https://cdn.example.com/c.png",
				PasswordHash: "hashedpassword3",
			},
			wantErr: repository.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, tt.user.ID)
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUsername("getbyid_user").
		Build(t, repo)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)
	assert.Empty(t, got.WatchHistory)
	assert.Nil(t, got.RefreshToken)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_GetByUsernameOrEmail(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().
		WithUsername("lookup_user").
		WithEmail("lookup@x.com").
		Build(t, repo)

	tests := []struct {
		name     string
		username string
		email    string
		wantErr  error
	}{
		{name: "by username", username: "lookup_user"},
		{name: "by email", email: "lookup@x.com"},
		{name: "username matches, email does not", username: "lookup_user", email: "nobody@x.com"},
		{name: "no match", username: "ghost", email: "ghost@x.com", wantErr: repository.ErrNotFound},
		{name: "both blank", wantErr: repository.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByUsernameOrEmail(ctx, tt.username, tt.email)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)
		})
	}
}

func TestUserRepository_UpdateRefreshToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, repo)

	token := "refresh-token-1"
	require.NoError(t, repo.UpdateRefreshToken(ctx, user.ID, &token))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, token, *got.RefreshToken)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)

	// clearing twice leaves the same state
	require.NoError(t, repo.UpdateRefreshToken(ctx, user.ID, nil))
	require.NoError(t, repo.UpdateRefreshToken(ctx, user.ID, nil))

	got, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshToken)

	err = repo.UpdateRefreshToken(ctx, uuid.New(), &token)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_RotateRefreshToken(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, repo)
	first := "refresh-token-1"
	require.NoError(t, repo.UpdateRefreshToken(ctx, user.ID, &first))

	require.NoError(t, repo.RotateRefreshToken(ctx, user.ID, first, "refresh-token-2"))

	// the old value no longer matches
	err := repo.RotateRefreshToken(ctx, user.ID, first, "refresh-token-3")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshToken)
	assert.Equal(t, "refresh-token-2", *got.RefreshToken)

	// a cleared session cannot be rotated
	require.NoError(t, repo.UpdateRefreshToken(ctx, user.ID, nil))
	err = repo.RotateRefreshToken(ctx, user.ID, "refresh-token-2", "refresh-token-4")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = repo.RotateRefreshToken(ctx, uuid.New(), first, "refresh-token-5")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, repo)
	other, _ := testutil.NewUserBuilder().Build(t, repo)

	name := "New Name"
	cover := "https://cdn.example.com/cover.png"
	got, err := repo.UpdateProfile(ctx, user.ID, domain.ProfilePatch{Fullname: &name, CoverImage: &cover})
	require.NoError(t, err)
	assert.Equal(t, name, got.Fullname)
	assert.Equal(t, cover, got.CoverImage)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.PasswordHash, got.PasswordHash)

	_, err = repo.UpdateProfile(ctx, user.ID, domain.ProfilePatch{Email: &other.Email})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = repo.UpdateProfile(ctx, uuid.New(), domain.ProfilePatch{Fullname: &name})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_UpdatePasswordHash(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, repo)

	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "new-hash"))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", got.PasswordHash)
}
