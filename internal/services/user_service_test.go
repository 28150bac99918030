package services

import (
	"context"
	"testing"

	"github.com/baharkarakas/rentacar-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.users.Register(ctx, "  Ada ", "Ada@Example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "Ada", sess.User.Name)
	assert.Equal(t, "ada@example.com", sess.User.Email)
	assert.Equal(t, models.RoleUser, sess.User.Role)
	assert.NotEqual(t, "password123", sess.User.PasswordHash)
	assert.NotEmpty(t, sess.Tokens.Access)

	_, err = f.users.Register(ctx, "Ada", "ada@example.com", "password123")
	var svcErr *Error
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, KindValidation, svcErr.Kind)
	assert.Equal(t, "user already exists", svcErr.Message)

	logged, err := f.users.Login(ctx, "ADA@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, logged.User.ID)

	_, err = f.users.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.users.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, c := range []struct{ name, email, password string }{
		{"", "a@example.com", "password123"},
		{"A", "", "password123"},
		{"A", "a@example.com", ""},
		{"A", "a@example.com", "short"},
		{"A", "not-an-email", "password123"},
	} {
		_, err := f.users.Register(ctx, c.name, c.email, c.password)
		assert.ErrorIs(t, err, ErrValidation, c)
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.users.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)

	u, err := f.users.Authenticate(ctx, sess.Tokens.Access)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, u.ID)

	_, err = f.users.Authenticate(ctx, sess.Tokens.Refresh)
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.users.Authenticate(ctx, "dev-"+sess.User.ID)
	assert.ErrorIs(t, err, ErrUnauthorized, "dev tokens are off by default")

	f.users.dev = true
	u, err = f.users.Authenticate(ctx, "dev-"+f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, u.ID)
}

func TestRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess, err := f.users.Register(ctx, "Ada", "ada@example.com", "password123")
	require.NoError(t, err)

	next, err := f.users.Refresh(ctx, sess.Tokens.Refresh)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, next.User.ID)

	_, err = f.users.Refresh(ctx, sess.Tokens.Access)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateAvatar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	file := tempImage(t, "me.png", "image/png")

	u, err := f.users.UpdateAvatar(ctx, f.owner.ID, &file)
	require.NoError(t, err)
	requireRemoved(t, []UploadFile{file})
	require.NotEmpty(t, u.Image)

	handles := f.blobs.Handles()
	require.Len(t, handles, 1)
	assert.Contains(t, handles[0], FolderProfilePics+"/")

	_, err = f.users.UpdateAvatar(ctx, f.owner.ID, nil)
	assert.ErrorIs(t, err, ErrValidation)

	pdf := tempImage(t, "doc.pdf", "application/pdf")
	_, err = f.users.UpdateAvatar(ctx, f.owner.ID, &pdf)
	assert.ErrorIs(t, err, ErrValidation)
	requireRemoved(t, []UploadFile{pdf})
}
