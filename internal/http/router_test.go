package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	_ "github.com/redmonkez12/go-todo-auth/docs"
	"github.com/redmonkez12/go-todo-auth/internal/auth"
	"github.com/redmonkez12/go-todo-auth/internal/config"
	"github.com/redmonkez12/go-todo-auth/internal/database/dbtest"
	"github.com/redmonkez12/go-todo-auth/internal/logging"
	"github.com/redmonkez12/go-todo-auth/internal/todo"
	"github.com/redmonkez12/go-todo-auth/internal/user"
)

const sharedSecret = "end-to-end-shared-secret"

func testConfig(service config.Service, env string) *config.Config {
	return &config.Config{
		Service: service,
		Server: config.ServerConfig{
			Env:              env,
			OperationTimeout: 2 * time.Second,
			TrustedOrigins:   []string{"http://localhost:3000"},
		},
		Auth: config.AuthConfig{
			TokenSecret:    []byte(sharedSecret),
			TokenFormat:    config.TokenFormatJWT,
			TokenDuration:  time.Hour,
			PasswordHasher: config.HasherBcrypt,
			BcryptCost:     bcrypt.MinCost,
		},
	}
}

// newIdentityRouter and newTodoRouter build each service the way its main
// does, each with its own database and its own codec instance. The only thing
// they share is the secret.
func newIdentityRouter(t *testing.T, env string) *chi.Mux {
	t.Helper()
	cfg := testConfig(config.ServiceIdentity, env)

	tokens, err := auth.NewTokenService(cfg.Auth)
	require.NoError(t, err)
	hasher, err := auth.NewPasswordHasher(cfg.Auth.PasswordHasher, cfg.Auth.BcryptCost)
	require.NoError(t, err)

	users := user.NewRepository(dbtest.New(t, config.ServiceIdentity))
	service := auth.NewService(auth.NewCredentials(users, hasher, cfg.Server.OperationTimeout), tokens)

	return NewIdentityRouter(cfg, auth.NewHandler(service), logging.NewDiscard())
}

func newTodoRouter(t *testing.T, env string) *chi.Mux {
	t.Helper()
	cfg := testConfig(config.ServiceTodos, env)

	tokens, err := auth.NewTokenService(cfg.Auth)
	require.NoError(t, err)

	repo := todo.NewRepository(dbtest.New(t, config.ServiceTodos))
	service := todo.NewService(repo, nil, logging.NewDiscard(), cfg.Server.OperationTimeout)

	return NewTodoRouter(cfg, todo.NewHandler(service), auth.NewMiddleware(tokens), logging.NewDiscard())
}

func send(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestScenario_RegisterLoginAndManageTodos(t *testing.T) {
	identity := newIdentityRouter(t, "prod")
	todos := newTodoRouter(t, "prod")

	rec := send(t, identity, http.MethodPost, "/register", "", `{"email":"a@b.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	registered := decode[auth.RegisterResponse](t, rec)
	require.NotEmpty(t, registered.Token)

	rec = send(t, identity, http.MethodPost, "/register", "", `{"email":"a@b.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = send(t, identity, http.MethodPost, "/login", "", `{"email":"a@b.com","password":"wrong-one"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = send(t, identity, http.MethodPost, "/login", "", `{"email":"a@b.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[auth.LoginResponse](t, rec).Token

	rec = send(t, todos, http.MethodPost, "/todos", token, `{"content":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(t, todos, http.MethodPost, "/todos", token, `{"content":"buy milk"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[todo.TodoResponse](t, rec).Todo
	assert.False(t, created.Completed)
	assert.Equal(t, registered.User.ID, created.OwnerID, "owner is the subject issued by the identity service")

	rec = send(t, todos, http.MethodDelete, "/todos/"+created.ID.String(), token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = send(t, todos, http.MethodPut, "/todos/"+created.ID.String(), token, `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenario_CrossUserIsolation(t *testing.T) {
	identity := newIdentityRouter(t, "prod")
	todos := newTodoRouter(t, "prod")

	register := func(email string) string {
		rec := send(t, identity, http.MethodPost, "/api/users/register", "", `{"user_email":"`+email+`","user_pwd":"secret1"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		return decode[auth.RegisterResponse](t, rec).Token
	}
	alice, bob := register("alice@example.com"), register("bob@example.com")

	rec := send(t, todos, http.MethodPost, "/api/todos", bob, `{"content":"bob's secret"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	bobsTodo := decode[todo.TodoResponse](t, rec).Todo

	rec = send(t, todos, http.MethodPut, "/api/todos/"+bobsTodo.ID.String(), alice, `{"content":"pwned"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = send(t, todos, http.MethodDelete, "/api/todos/"+bobsTodo.ID.String(), alice, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(t, todos, http.MethodGet, "/api/todos", alice, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[todo.TodosResponse](t, rec).Todos)

	rec = send(t, todos, http.MethodPut, "/todos/"+bobsTodo.ID.String(), bob, `{"content":"renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = send(t, todos, http.MethodGet, "/todos", bob, "")
	list := decode[todo.TodosResponse](t, rec).Todos
	require.Len(t, list, 1)
	assert.Equal(t, "renamed", list[0].Content)
	assert.False(t, list[0].Completed)
}

func TestTodoRouter_RejectsTokenFromOtherSecret(t *testing.T) {
	todos := newTodoRouter(t, "prod")

	foreign, err := auth.NewJWTService([]byte("not-the-shared-secret"), time.Hour)
	require.NoError(t, err)
	tok, err := foreign.CreateToken(uuid.New())
	require.NoError(t, err)

	rec := send(t, todos, http.MethodGet, "/todos", tok, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token is not valid")

	rec = send(t, todos, http.MethodGet, "/todos", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No token, authorization denied")
}

func TestRouters_HealthAndHeaders(t *testing.T) {
	for name, router := range map[string]http.Handler{
		"identity": newIdentityRouter(t, "prod"),
		"todos":    newTodoRouter(t, "prod"),
	} {
		t.Run(name, func(t *testing.T) {
			rec := send(t, router, http.MethodGet, "/health", "", "")
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, name+" service is running", decode[HealthResponse](t, rec).Status)

			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
			assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
		})
	}
}

func TestRouters_CORS(t *testing.T) {
	router := newIdentityRouter(t, "prod")

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouters_SwaggerOnlyInDevelopment(t *testing.T) {
	rec := send(t, newTodoRouter(t, "prod"), http.MethodGet, "/swagger/doc.json", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(t, newTodoRouter(t, "dev"), http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/todos/{id}")

	rec = send(t, newIdentityRouter(t, "dev"), http.MethodGet, "/swagger/doc.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/register")
	assert.NotContains(t, rec.Body.String(), "/todos/{id}")
}

func TestRouters_UnknownRoute(t *testing.T) {
	rec := send(t, newIdentityRouter(t, "prod"), http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}
