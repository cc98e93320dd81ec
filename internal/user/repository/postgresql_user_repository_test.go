package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	"github.com/gtedge/aegis/internal/testutil"
	"github.com/gtedge/aegis/internal/user/domain"
)

func newTestUser(email string) *domain.User {
	tenantID := uuid.Must(uuid.NewV7())
	return &domain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        email,
		Name:         "Alice Example",
		PasswordHash: "argon2id-hash",
		TenantID:     &tenantID,
		UserType:     authzDomain.TenantUser,
		IsActive:     true,
	}
}

func TestNewPostgreSQLUserRepository(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestPostgreSQLUserRepository_Create(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	user := newTestUser("alice@example.com")
	err := repo.Create(ctx, user)
	require.NoError(t, err)

	created, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, created.ID)
	assert.Equal(t, user.Email, created.Email)
	assert.Equal(t, user.Name, created.Name)
	assert.Equal(t, user.PasswordHash, created.PasswordHash)
	require.NotNil(t, created.TenantID)
	assert.Equal(t, *user.TenantID, *created.TenantID)
	assert.Equal(t, authzDomain.TenantUser, created.UserType)
	assert.True(t, created.IsActive)
	assert.Equal(t, 0, created.FailedAttempts)
	assert.Nil(t, created.LockedUntil)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())
}

func TestPostgreSQLUserRepository_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	user := newTestUser("dup@example.com")
	require.NoError(t, repo.Create(ctx, user))

	other := newTestUser("dup@example.com")
	err := repo.Create(ctx, other)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestPostgreSQLUserRepository_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)

	user, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Nil(t, user)
}

func TestPostgreSQLUserRepository_GetByEmail(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	user := newTestUser("bob@example.com")
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Equal(t, user.Email, found.Email)
}

func TestPostgreSQLUserRepository_GetByEmail_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)

	user, err := repo.GetByEmail(context.Background(), "notfound@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Nil(t, user)
}

func TestPostgreSQLUserRepository_UpdateLockout(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)
	ctx := context.Background()

	user := newTestUser("carol@example.com")
	require.NoError(t, repo.Create(ctx, user))

	lockedUntil := time.Now().UTC().Add(15 * time.Minute).Truncate(time.Second)
	err := repo.UpdateLockout(ctx, user.ID, 5, &lockedUntil)
	require.NoError(t, err)

	updated, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.FailedAttempts)
	require.NotNil(t, updated.LockedUntil)
	assert.WithinDuration(t, lockedUntil, *updated.LockedUntil, time.Second)

	// Clearing the lockout resets both fields
	err = repo.UpdateLockout(ctx, user.ID, 0, nil)
	require.NoError(t, err)

	updated, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.FailedAttempts)
	assert.Nil(t, updated.LockedUntil)
}

func TestPostgreSQLUserRepository_UpdateLockout_NotFound(t *testing.T) {
	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLUserRepository(db)

	err := repo.UpdateLockout(context.Background(), uuid.Must(uuid.NewV7()), 1, nil)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
