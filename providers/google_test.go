package providers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"chamado-service/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleProvider_Exchange(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "the-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"email":"ana@uisa.com.br","email_verified":true,"name":"Ana Souza","picture":"https://x/p.png"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := providers.NewGoogleProvider(providers.GoogleConfig{
		ClientID:     "cid",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:3000/login/google/callback",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/userinfo",
	})

	user, err := g.Exchange(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "ana@uisa.com.br", user.Email)
	assert.Equal(t, "Ana Souza", user.Name)
}

func TestGoogleProvider_AuthCodeURL(t *testing.T) {
	g := providers.NewGoogleProvider(providers.GoogleConfig{ClientID: "cid", RedirectURL: "http://localhost:3000/cb"})

	u, err := url.Parse(g.AuthCodeURL("st4te"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	q := u.Query()
	assert.Equal(t, "st4te", q.Get("state"))
	assert.Equal(t, "cid", q.Get("client_id"))
	assert.Equal(t, "http://localhost:3000/cb", q.Get("redirect_uri"))
	assert.Contains(t, q.Get("scope"), "email")
}
