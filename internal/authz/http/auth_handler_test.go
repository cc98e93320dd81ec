package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/gtedge/aegis/internal/authz/domain"
	"github.com/gtedge/aegis/internal/authz/http/dto"
	authzService "github.com/gtedge/aegis/internal/authz/service"
	authzUseCase "github.com/gtedge/aegis/internal/authz/usecase"
	sessionDomain "github.com/gtedge/aegis/internal/session/domain"
	sessionRepository "github.com/gtedge/aegis/internal/session/repository"
	sessionUseCase "github.com/gtedge/aegis/internal/session/usecase"
	userDomain "github.com/gtedge/aegis/internal/user/domain"
)

const testPassword = "Str0ng!Passw0rd"

// memoryUserStore is an in-memory UserStore for handler tests.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]*userDomain.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]*userDomain.User)}
}

func (s *memoryUserStore) GetByEmail(_ context.Context, email string) (*userDomain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[email]
	if !ok {
		return nil, userDomain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *memoryUserStore) UpdateLockout(_ context.Context, id uuid.UUID, failedAttempts int, lockedUntil *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.ID == id {
			user.FailedAttempts = failedAttempts
			user.LockedUntil = lockedUntil
			return nil
		}
	}
	return userDomain.ErrUserNotFound
}

func (s *memoryUserStore) add(user *userDomain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Email] = user
}

// testStack wires the real services with in-memory stores for handler tests.
type testStack struct {
	handler     *AuthHandler
	authUseCase authzUseCase.UseCase
	users       *memoryUserStore
	sessions    sessionUseCase.UseCase
	logger      *slog.Logger
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	gin.SetMode(gin.TestMode)

	signingKey := make([]byte, 32)
	copy(signingKey, "0123456789abcdef0123456789abcdef")

	hasher, err := authzService.NewCapabilityHasher(signingKey)
	require.NoError(t, err)
	tokens, err := authzService.NewTokenService(signingKey, "aegis-test", hasher)
	require.NoError(t, err)
	credentials := authzService.NewCredentialService()

	policy := sessionDomain.Policy{
		IdleTimeout:      30 * time.Minute,
		AbsoluteTimeout:  12 * time.Hour,
		WarningThreshold: 5 * time.Minute,
	}
	sessions := sessionUseCase.NewSessionUseCase(sessionRepository.NewMemorySessionRepository(), policy)

	users := newMemoryUserStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	uc := authzUseCase.NewAuthUseCase(users, credentials, tokens, sessions, authzUseCase.LockoutPolicy{
		MaxAttempts: 3,
		Duration:    15 * time.Minute,
	})

	return &testStack{
		handler:     NewAuthHandler(uc, logger),
		authUseCase: uc,
		users:       users,
		sessions:    sessions,
		logger:      logger,
	}
}

func (s *testStack) addUser(t *testing.T, email string, userType authzDomain.UserType) *userDomain.User {
	t.Helper()

	hash, err := authzService.NewCredentialService().HashPassword(testPassword)
	require.NoError(t, err)

	tenantID := uuid.New()
	user := &userDomain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		TenantID:     &tenantID,
		UserType:     userType,
		IsActive:     true,
	}
	s.users.add(user)
	return user
}

// login performs a login through the use case and returns the bearer token.
func (s *testStack) login(t *testing.T, email string) string {
	t.Helper()

	output, err := s.authUseCase.Login(context.Background(), authzUseCase.LoginInput{
		Email:    email,
		Password: testPassword,
	}, time.Now().UTC())
	require.NoError(t, err)
	return output.Token
}

// createTestContext builds a gin test context with an optional JSON body.
func createTestContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}

	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestAuthHandler_LoginHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		stack := newTestStack(t)
		stack.addUser(t, "user@example.com", authzDomain.TenantUser)

		c, w := createTestContext(http.MethodPost, "/v1/login", dto.LoginRequest{
			Email:    "user@example.com",
			Password: testPassword,
		})

		stack.handler.LoginHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response.AccessToken)
		assert.Equal(t, "Bearer", response.TokenType)
		assert.True(t, response.Session.IsValid)
		assert.Equal(t, string(sessionDomain.StateActive), response.Session.State)
		assert.InDelta(t, 30*60, response.Session.IdleRemainingSeconds, 2)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		stack := newTestStack(t)

		c, w := createTestContext(http.MethodPost, "/v1/login", nil)
		c.Request = httptest.NewRequest(http.MethodPost, "/v1/login", bytes.NewReader([]byte("{not json")))

		stack.handler.LoginHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_MissingEmail", func(t *testing.T) {
		stack := newTestStack(t)

		c, w := createTestContext(http.MethodPost, "/v1/login", dto.LoginRequest{
			Password: testPassword,
		})

		stack.handler.LoginHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_WrongPassword", func(t *testing.T) {
		stack := newTestStack(t)
		stack.addUser(t, "user@example.com", authzDomain.TenantUser)

		c, w := createTestContext(http.MethodPost, "/v1/login", dto.LoginRequest{
			Email:    "user@example.com",
			Password: "wrong-password",
		})

		stack.handler.LoginHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_UnknownEmail", func(t *testing.T) {
		stack := newTestStack(t)

		c, w := createTestContext(http.MethodPost, "/v1/login", dto.LoginRequest{
			Email:    "ghost@example.com",
			Password: testPassword,
		})

		stack.handler.LoginHandler(c)

		// Indistinguishable from a wrong password
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_LockedAccount", func(t *testing.T) {
		stack := newTestStack(t)
		stack.addUser(t, "user@example.com", authzDomain.TenantUser)

		for i := 0; i < 3; i++ {
			c, _ := createTestContext(http.MethodPost, "/v1/login", dto.LoginRequest{
				Email:    "user@example.com",
				Password: "wrong-password",
			})
			stack.handler.LoginHandler(c)
		}

		c, w := createTestContext(http.MethodPost, "/v1/login", dto.LoginRequest{
			Email:    "user@example.com",
			Password: testPassword,
		})
		stack.handler.LoginHandler(c)

		assert.Equal(t, http.StatusLocked, w.Code)
	})
}

func TestAuthHandler_WhoamiHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		stack := newTestStack(t)
		user := stack.addUser(t, "user@example.com", authzDomain.TenantAdmin)
		token := stack.login(t, "user@example.com")

		c, w := createTestContext(http.MethodGet, "/v1/whoami", nil)
		c.Request.Header.Set("Authorization", "Bearer "+token)

		stack.handler.WhoamiHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.WhoamiResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, user.ID.String(), response.Subject)
		require.NotNil(t, response.TenantID)
		assert.Equal(t, user.TenantID.String(), *response.TenantID)
		assert.Equal(t, string(authzDomain.TenantAdmin), response.UserType)
		assert.NotEmpty(t, response.SessionID)
		assert.Len(t, response.Capabilities, 2)
		assert.True(t, response.Session.IsValid)
	})

	t.Run("Error_MissingToken", func(t *testing.T) {
		stack := newTestStack(t)

		c, w := createTestContext(http.MethodGet, "/v1/whoami", nil)

		stack.handler.WhoamiHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Error_GarbageToken", func(t *testing.T) {
		stack := newTestStack(t)

		c, w := createTestContext(http.MethodGet, "/v1/whoami", nil)
		c.Request.Header.Set("Authorization", "Bearer not-a-token")

		stack.handler.WhoamiHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
