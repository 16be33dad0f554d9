package command

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/cmd/cli/authentication"
	"reviewhub/internal/microservices/http-api/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func run(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	return rootCmd.Execute()
}

func TestTokenCommandStoresCredentials(t *testing.T) {
	keyring.MockInit()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/token", r.URL.Path)
		_ = json.NewEncoder(w).Encode(dto.TokenResponse{Token: "jwt-token"})
	}))
	defer srv.Close()

	require.NoError(t, run(t, "--api", srv.URL, "auth", "token", "--email", "a@example.com", "--code", "ABCD2345"))

	creds, err := authentication.GetTokens()
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", creds.Token)
	assert.Equal(t, srv.URL, creds.APIURL)
}

func TestGenreListSendsStoredToken(t *testing.T) {
	keyring.MockInit()
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/api/v1/genres", r.URL.Path)
		_, _ = w.Write([]byte(`{"count":1,"next":null,"previous":null,"results":[{"name":"Drama","slug":"drama"}]}`))
	}))
	defer srv.Close()
	require.NoError(t, authentication.StoreTokens(&authentication.StoredCredentials{Token: "stored", APIURL: srv.URL}))

	require.NoError(t, run(t, "--api", srv.URL, "genre", "list"))
	assert.Equal(t, "Bearer stored", gotAuth)
}

func TestWhoamiRequiresLogin(t *testing.T) {
	keyring.MockInit()
	err := run(t, "whoami")
	assert.ErrorIs(t, err, authentication.ErrNotLoggedIn)
}

func TestReviewPostRejectsOutOfRangeScore(t *testing.T) {
	keyring.MockInit()
	err := run(t, "review", "post", "1", "--text", "fine", "--score", "11")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 10")
}

func TestGenreCreateRejectsBadSlugLocally(t *testing.T) {
	keyring.MockInit()
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	err := run(t, "--api", srv.URL, "genre", "create", "--name", "Sci Fi", "--slug", "sci fi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid slug")
	assert.False(t, called)
}
