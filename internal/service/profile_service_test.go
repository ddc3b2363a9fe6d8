package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dom/account-service/internal/domain"
	"github.com/dom/account-service/internal/service"
	"github.com/dom/account-service/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileService_GetCurrentUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, _ := testutil.NewUserBuilder().Build(t, f.users)

	got, err := f.services.Profile.GetCurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Username, got.Username)

	_, err = f.services.Profile.GetCurrentUser(ctx, uuid.New())
	requireKind(t, err, domain.KindNotFound, "User does not exist")
}

func TestProfileService_UpdateDetails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	user, _ := testutil.NewUserBuilder().WithFullname("Old Name").Build(t, f.users)
	other, _ := testutil.NewUserBuilder().Build(t, f.users)

	tests := []struct {
		name        string
		input       service.UpdateDetailsInput
		wantKind    domain.Kind
		wantMessage string
		check       func(t *testing.T, got *domain.PublicUser)
	}{
		{
			name:        "nothing to update",
			input:       service.UpdateDetailsInput{Fullname: "  ", Email: ""},
			wantKind:    domain.KindValidation,
			wantMessage: "Fullname or email is required",
		},
		{
			name:        "email taken",
			input:       service.UpdateDetailsInput{Email: other.Email},
			wantKind:    domain.KindConflict,
			wantMessage: "User with this email already exists",
		},
		{
			name:  "fullname only",
			input: service.UpdateDetailsInput{Fullname: " New Name "},
			check: func(t *testing.T, got *domain.PublicUser) {
				assert.Equal(t, "New Name", got.Fullname)
				assert.Equal(t, user.Email, got.Email)
			},
		},
		{
			name:  "email is lowercased",
			input: service.UpdateDetailsInput{Email: "New@Example.COM"},
			check: func(t *testing.T, got *domain.PublicUser) {
				assert.Equal(t, "new@example.com", got.Email)
				assert.Equal(t, "New Name", got.Fullname)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.services.Profile.UpdateDetails(ctx, user.ID, tt.input)
			if tt.wantMessage != "" {
				requireKind(t, err, tt.wantKind, tt.wantMessage)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}

	stored, err := f.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.PasswordHash, stored.PasswordHash)
}

func TestProfileService_UpdateImages(t *testing.T) {
	ctx := context.Background()

	type imageUpdate func(context.Context, uuid.UUID, *service.LocalFile) (*domain.PublicUser, error)

	tests := []struct {
		name       string
		update     func(f *fixture) imageUpdate
		field      func(u *domain.PublicUser) string
		missingMsg string
		failedMsg  string
	}{
		{
			name:       "avatar",
			update:     func(f *fixture) imageUpdate { return f.services.Profile.UpdateAvatar },
			field:      func(u *domain.PublicUser) string { return u.Avatar },
			missingMsg: "Avatar file is missing",
			failedMsg:  "Error while uploading avatar",
		},
		{
			name:       "cover image",
			update:     func(f *fixture) imageUpdate { return f.services.Profile.UpdateCoverImage },
			field:      func(u *domain.PublicUser) string { return u.CoverImage },
			missingMsg: "Cover image file is missing",
			failedMsg:  "Error while uploading cover image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			user, _ := testutil.NewUserBuilder().Build(t, f.users)
			update := tt.update(f)

			_, err := update(ctx, user.ID, nil)
			requireKind(t, err, domain.KindValidation, tt.missingMsg)

			file := &service.LocalFile{Path: testutil.TempImage(t, "new.png"), Filename: "new.png"}
			got, err := update(ctx, user.ID, file)
			require.NoError(t, err)
			assert.NotEmpty(t, tt.field(got))
			assert.False(t, testutil.FileExists(file.Path))

			before := tt.field(got)
			f.uploader.FailWith(errors.New("boom"))
			file = &service.LocalFile{Path: testutil.TempImage(t, "again.png"), Filename: "again.png"}
			_, err = update(ctx, user.ID, file)
			requireKind(t, err, domain.KindUpload, tt.failedMsg)
			assert.False(t, testutil.FileExists(file.Path))

			current, err := f.services.Profile.GetCurrentUser(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, before, tt.field(current))
		})
	}
}

func TestProfileService_GetWatchHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	watched := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	user, _ := testutil.NewUserBuilder().WithWatchHistory(watched...).Build(t, f.users)
	empty, _ := testutil.NewUserBuilder().Build(t, f.users)

	got, err := f.services.Profile.GetWatchHistory(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, watched, got)

	got, err = f.services.Profile.GetWatchHistory(ctx, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = f.services.Profile.GetWatchHistory(ctx, uuid.New())
	requireKind(t, err, domain.KindNotFound, "User does not exist")
}
