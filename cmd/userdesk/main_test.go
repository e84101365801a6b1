package main

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdesk/userdesk/internal/testutil/fakeapi"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("USERDESK_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("USERDESK_LOG_LEVEL", "error")

	var out bytes.Buffer
	err := run(context.Background(), args, &out)
	return out.String(), err
}

func TestRun_MissingAndUnknownCommand(t *testing.T) {
	_, err := runCLI(t)
	assert.EqualError(t, err, "missing command")

	_, base := fakeapi.Start(t)
	_, err = runCLI(t, "-base-url", base, "frobnicate")
	assert.EqualError(t, err, `unknown command "frobnicate"`)
}

func TestRun_List(t *testing.T) {
	srv, base := fakeapi.Start(t)
	srv.Seed(
		fakeapi.User{Name: "Bob", Email: "bob@example.com"},
		fakeapi.User{Name: "ann", Email: "ann@example.com"},
		fakeapi.User{Name: "Joanna", Email: "jo@example.com"},
	)

	out, err := runCLI(t, "-base-url", base, "list")
	require.NoError(t, err)
	assert.Regexp(t, `(?s)ID\s+NAME\s+EMAIL.*ann.*Bob.*Joanna`, out)

	out, err = runCLI(t, "-base-url", base, "list", "-q", "AN", "-desc")
	require.NoError(t, err)
	assert.Regexp(t, `(?s)Joanna.*ann`, out)
	assert.NotContains(t, out, "Bob")

	out, err = runCLI(t, "-base-url", base, "list", "-search-by", "email", "-q", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "No users available\n", out)
}

func TestRun_ListFromEnvBaseURL(t *testing.T) {
	srv, base := fakeapi.Start(t)
	srv.Seed(fakeapi.User{Name: "Ann", Email: "ann@example.com"})
	t.Setenv("USERDESK_API_BASE_URL", base)

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ann@example.com")
}

func TestRun_Mutations(t *testing.T) {
	srv, base := fakeapi.Start(t)

	out, err := runCLI(t, "-base-url", base, "add", "-name", "Ann", "-email", "ann@example.com")
	require.NoError(t, err)
	require.Len(t, srv.Users(), 1)
	id := srv.Users()[0].ID
	assert.Contains(t, out, id)

	out, err = runCLI(t, "-base-url", base, "update", "-id", id, "-name", "Annie")
	require.NoError(t, err)
	assert.Contains(t, out, "Annie")
	assert.Equal(t, "Annie", srv.Users()[0].Name)

	out, err = runCLI(t, "-base-url", base, "delete", "-id", id)
	require.NoError(t, err)
	assert.Equal(t, "No users available\n", out)
	assert.Empty(t, srv.Users())
}

func TestRun_FailedMutationStillPrintsList(t *testing.T) {
	srv, base := fakeapi.Start(t)
	srv.Seed(fakeapi.User{Name: "Bob", Email: "bob@example.com"})
	srv.FailNext(http.MethodPost, http.StatusInternalServerError)

	out, err := runCLI(t, "-base-url", base, "add", "-name", "Ann", "-email", "ann@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "add failed")
	assert.Contains(t, out, "Bob")
	assert.NotContains(t, out, "Ann")
}

func TestRun_InvalidInput(t *testing.T) {
	srv, base := fakeapi.Start(t)

	_, err := runCLI(t, "-base-url", base, "add", "-name", "Ann", "-email", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Email is invalid")

	_, err = runCLI(t, "-base-url", base, "delete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")

	_, err = runCLI(t, "-base-url", base, "list", "-sort", "id")
	require.Error(t, err)

	assert.Empty(t, srv.Requests())
}
