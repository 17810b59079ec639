package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-todo-auth/internal/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "todos.db"))

	out, err := execute(t, "migrate", "--service", "todos")
	require.NoError(t, err)
	assert.Equal(t, "todos schema is up to date\n", out)

	// a second run has nothing to apply
	_, err = execute(t, "migrate", "--service", "todos")
	require.NoError(t, err)

	_, err = execute(t, "migrate", "--service", "todos", "--status")
	assert.NoError(t, err)
}

func TestMigrate_RejectsUnknownService(t *testing.T) {
	_, err := execute(t, "migrate", "--service", "billing")
	assert.ErrorContains(t, err, "unknown service")

	_, err = execute(t, "migrate")
	assert.Error(t, err, "--service is required")
}

func TestToken_IssueAndVerify(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "cli-test-secret")
	t.Setenv("TOKEN_FORMAT", "jwt")
	subject := uuid.New()

	out, err := execute(t, "token", "issue", "--subject", subject.String())
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)

	out, err = execute(t, "token", "verify", token)
	require.NoError(t, err)
	assert.Contains(t, out, "subject: "+subject.String())
	assert.Contains(t, out, "expires: ")
}

func TestToken_VerifyReportsFailureKind(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "cli-test-secret")
	t.Setenv("TOKEN_FORMAT", "jwt")

	other, err := auth.NewJWTService([]byte("some-other-secret"), time.Hour)
	require.NoError(t, err)
	foreign, err := other.CreateToken(uuid.New())
	require.NoError(t, err)

	_, err = execute(t, "token", "verify", foreign)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)

	_, err = execute(t, "token", "verify", "not-a-token")
	assert.ErrorIs(t, err, auth.ErrMalformedToken)
}

func TestToken_Issue_Errors(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "cli-test-secret")

	_, err := execute(t, "token", "issue", "--subject", "42")
	assert.ErrorContains(t, err, "subject must be a UUID")

	t.Setenv("TOKEN_SECRET", "")
	_, err = execute(t, "token", "issue", "--subject", uuid.NewString())
	assert.ErrorContains(t, err, "failed to load config")
}
