// Package integration provides end-to-end tests for the authentication API.
// Tests run against both PostgreSQL and MySQL databases and exercise the full
// stack: session client, HTTP surface, use cases, and repositories.
package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webstack/webstack/internal/app"
	"github.com/webstack/webstack/internal/config"
	apperrors "github.com/webstack/webstack/internal/errors"
	"github.com/webstack/webstack/internal/session"
	"github.com/webstack/webstack/internal/testutil"
	userDomain "github.com/webstack/webstack/internal/user/domain"
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	dbDriver  string
}

// setupIntegrationTest initializes the full stack against a real database.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	var db *sql.DB
	var dsn string
	if dbDriver == "postgres" {
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}

	cfg := &config.Config{
		DBDriver:                  dbDriver,
		DBConnectionString:        dsn,
		DBMaxOpenConnections:      10,
		DBMaxIdleConnections:      5,
		DBConnMaxLifetime:         time.Hour,
		ServerHost:                "localhost",
		ServerPort:                8080,
		LogLevel:                  "error",
		AuthSecretKey:             "integration-test-master-secret",
		AuthTokenExpiration:       time.Hour,
		CookieName:                "webstack_session",
		RevocationStore:           "memory",
		RevocationCleanupInterval: time.Minute,
	}

	container := app.NewContainer(cfg)

	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	testServer := httptest.NewServer(httpSrv.GetHandler())

	return &integrationTestContext{
		container: container,
		db:        db,
		server:    testServer,
		dbDriver:  dbDriver,
	}
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, tc *integrationTestContext) {
	t.Helper()

	if tc.server != nil {
		tc.server.Close()
	}

	if tc.container != nil {
		if err := tc.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}

	if tc.db != nil {
		if tc.dbDriver == "postgres" {
			testutil.CleanupPostgresDB(t, tc.db)
		} else {
			testutil.CleanupMySQLDB(t, tc.db)
		}
		testutil.TeardownDB(t, tc.db)
	}
}

// newSessionClient builds a session client pointed at the test server.
func newSessionClient(t *testing.T, tc *integrationTestContext) *session.Client {
	t.Helper()

	client, err := session.NewClient(tc.server.URL)
	require.NoError(t, err, "failed to create session client")
	return client
}

// createAdmin provisions an admin account directly through the container,
// mirroring what the create-admin CLI command does.
func createAdmin(t *testing.T, tc *integrationTestContext, email, password string) {
	t.Helper()

	passwords := tc.container.PasswordService()
	hash, err := passwords.Hash(password)
	require.NoError(t, err, "failed to hash admin password")

	testutil.CreateTestUser(t, tc.db, tc.dbDriver, email, hash, string(userDomain.RoleAdmin), true)
}

func runAuthFlowTests(t *testing.T, dbDriver string) {
	tc := setupIntegrationTest(t, dbDriver)
	defer teardownIntegrationTest(t, tc)

	ctx := context.Background()

	t.Run("RegisterLoginLogout", func(t *testing.T) {
		client := newSessionClient(t, tc)

		user, err := client.Register(ctx, "Alice", "alice@example.com", "Str0ng!Pass")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, session.StateUnknown, client.State())

		require.NoError(t, client.Login(ctx, "alice@example.com", "Str0ng!Pass"))
		assert.Equal(t, session.StateAuthenticated, client.State())

		me, err := client.Me(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Alice", me.Name)

		state, err := client.Refresh(ctx)
		require.NoError(t, err)
		assert.Equal(t, session.StateAuthenticated, state)

		require.NoError(t, client.Logout(ctx))
		assert.Equal(t, session.StateUnauthenticated, client.State())

		_, err = client.Me(ctx)
		require.ErrorIs(t, err, session.ErrNotAuthenticated)
	})

	t.Run("DuplicateRegistrationConflicts", func(t *testing.T) {
		client := newSessionClient(t, tc)

		_, err := client.Register(ctx, "Bob", "bob@example.com", "Str0ng!Pass")
		require.NoError(t, err)

		_, err = client.Register(ctx, "Bob Again", "bob@example.com", "Str0ng!Pass")
		require.ErrorIs(t, err, apperrors.ErrConflict)

		// Email uniqueness is case-insensitive
		_, err = client.Register(ctx, "Bob Upper", "BOB@example.com", "Str0ng!Pass")
		require.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("WrongPasswordIsUnauthorized", func(t *testing.T) {
		client := newSessionClient(t, tc)

		_, err := client.Register(ctx, "Carol", "carol@example.com", "Str0ng!Pass")
		require.NoError(t, err)

		err = client.Login(ctx, "carol@example.com", "WrongPass1!")
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
		assert.Equal(t, session.StateUnknown, client.State())
	})

	t.Run("LogoutRevokesServerSide", func(t *testing.T) {
		// Two clients sharing one account: logging out on one must not
		// leave its token usable anywhere.
		first := newSessionClient(t, tc)
		_, err := first.Register(ctx, "Dave", "dave@example.com", "Str0ng!Pass")
		require.NoError(t, err)
		require.NoError(t, first.Login(ctx, "dave@example.com", "Str0ng!Pass"))

		token := loginForToken(t, tc, "dave@example.com", "Str0ng!Pass")

		// Token works before logout
		status, body := requestWithBearer(t, tc, http.MethodGet, "/v1/users/me", token)
		require.Equal(t, http.StatusOK, status, "body: %s", body)

		logoutStatus, _ := requestWithBearer(t, tc, http.MethodPost, "/v1/auth/logout", token)
		require.Equal(t, http.StatusOK, logoutStatus)

		status, _ = requestWithBearer(t, tc, http.MethodGet, "/v1/users/me", token)
		require.Equal(t, http.StatusUnauthorized, status)

		// Logout is idempotent
		logoutStatus, _ = requestWithBearer(t, tc, http.MethodPost, "/v1/auth/logout", token)
		require.Equal(t, http.StatusOK, logoutStatus)
	})

	t.Run("StatusEndpointNeverRejects", func(t *testing.T) {
		status, body := requestWithBearer(t, tc, http.MethodGet, "/v1/auth/status", "garbage-token")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body), `"authenticated":false`)

		status, body = requestWithBearer(t, tc, http.MethodGet, "/v1/auth/status", "")
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body), `"authenticated":false`)
	})

	t.Run("ReconcilerDetectsDeactivation", func(t *testing.T) {
		client := newSessionClient(t, tc)
		_, err := client.Register(ctx, "Erin", "erin@example.com", "Str0ng!Pass")
		require.NoError(t, err)
		require.NoError(t, client.Login(ctx, "erin@example.com", "Str0ng!Pass"))

		reconcilerCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			client.StartReconciler(reconcilerCtx, 50*time.Millisecond)
			close(done)
		}()

		// Deactivate the account behind the client's back; the next
		// reconciliation must observe the dead session.
		deactivateUser(t, tc, "erin@example.com")

		assert.Eventually(t, func() bool {
			return client.State() == session.StateUnauthenticated
		}, 2*time.Second, 25*time.Millisecond)

		cancel()
		<-done
	})

	t.Run("AdminListsUsers", func(t *testing.T) {
		createAdmin(t, tc, "admin@example.com", "Adm1n!Pass")

		adminToken := loginForToken(t, tc, "admin@example.com", "Adm1n!Pass")
		status, body := requestWithBearer(t, tc, http.MethodGet, "/v1/users?limit=100", adminToken)
		require.Equal(t, http.StatusOK, status, "body: %s", body)
		assert.Contains(t, string(body), "admin@example.com")

		// Regular accounts are forbidden
		client := newSessionClient(t, tc)
		_, err := client.Register(ctx, "Frank", "frank@example.com", "Str0ng!Pass")
		require.NoError(t, err)
		userToken := loginForToken(t, tc, "frank@example.com", "Str0ng!Pass")

		status, _ = requestWithBearer(t, tc, http.MethodGet, "/v1/users", userToken)
		require.Equal(t, http.StatusForbidden, status)
	})

	t.Run("UpdateProfile", func(t *testing.T) {
		client := newSessionClient(t, tc)
		_, err := client.Register(ctx, "Grace", "grace@example.com", "Str0ng!Pass")
		require.NoError(t, err)
		token := loginForToken(t, tc, "grace@example.com", "Str0ng!Pass")

		payload := `{"name":"Grace Updated","profile":{"bio":"hello","avatar_url":"https://example.com/a.png","phone_number":"+15550001111"}}`
		status, body := jsonRequestWithBearer(t, tc, http.MethodPut, "/v1/users/me", token, payload)
		require.Equal(t, http.StatusOK, status, "body: %s", body)
		assert.Contains(t, string(body), "Grace Updated")
		assert.Contains(t, string(body), "hello")

		status, body = requestWithBearer(t, tc, http.MethodGet, "/v1/users/me", token)
		require.Equal(t, http.StatusOK, status)
		assert.Contains(t, string(body), "Grace Updated")
	})
}

// deactivateUser flips is_active off directly in the database.
func deactivateUser(t *testing.T, tc *integrationTestContext, email string) {
	t.Helper()

	query := "UPDATE users SET is_active = FALSE WHERE email = $1"
	if tc.dbDriver == "mysql" {
		query = "UPDATE users SET is_active = FALSE WHERE email = ?"
	}

	result, err := tc.db.Exec(query, email)
	require.NoError(t, err, "failed to deactivate user")
	rows, err := result.RowsAffected()
	require.NoError(t, err)
	require.EqualValues(t, 1, rows)
}

// loginForToken performs a raw login request and returns the issued token.
func loginForToken(t *testing.T, tc *integrationTestContext, email, password string) string {
	t.Helper()

	payload := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	resp, err := http.Post(tc.server.URL+"/v1/auth/login", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

// requestWithBearer performs a request with an optional bearer token.
func requestWithBearer(t *testing.T, tc *integrationTestContext, method, path, token string) (int, []byte) {
	t.Helper()
	return jsonRequestWithBearer(t, tc, method, path, token, "")
}

// jsonRequestWithBearer performs a JSON request with an optional bearer token.
func jsonRequestWithBearer(t *testing.T, tc *integrationTestContext, method, path, token, payload string) (int, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if payload != "" {
		bodyReader = strings.NewReader(payload)
	}

	req, err := http.NewRequest(method, tc.server.URL+path, bodyReader)
	require.NoError(t, err)
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestAuthFlowPostgres(t *testing.T) {
	testutil.SkipIfNoPostgres(t)
	runAuthFlowTests(t, "postgres")
}

func TestAuthFlowMySQL(t *testing.T) {
	testutil.SkipIfNoMySQL(t)
	runAuthFlowTests(t, "mysql")
}
