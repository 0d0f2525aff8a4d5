package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/notesync/notesync/internal/oauth"
)

func TestGoogle_LoginURL(t *testing.T) {
	g := oauth.NewGoogle(oauth.GoogleConfig{
		ClientID:    "client-123",
		RedirectURL: "http://localhost:8080/auth/callback",
	})

	loginURL, err := url.Parse(g.LoginURL("state-abc"))
	if err != nil {
		t.Fatalf("parse login URL: %v", err)
	}

	q := loginURL.Query()
	if q.Get("client_id") != "client-123" {
		t.Fatalf("expected client_id, got %q", q.Get("client_id"))
	}
	if q.Get("state") != "state-abc" {
		t.Fatalf("expected state to be echoed, got %q", q.Get("state"))
	}
	if q.Get("response_type") != "code" {
		t.Fatalf("expected response_type code, got %q", q.Get("response_type"))
	}
}

func TestGoogle_Exchange(t *testing.T) {
	var gotCode, gotBearer string

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse token form: %v", err)
		}
		gotCode = r.PostFormValue("code")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "access-xyz",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))
	defer tokenSrv.Close()

	infoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBearer = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{
			"sub":   "goog-42",
			"email": "user@example.com",
			"name":  "Google User",
		})
	}))
	defer infoSrv.Close()

	g := oauth.NewGoogle(oauth.GoogleConfig{
		ClientID:     "client-123",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/auth/callback",
		TokenURL:     tokenSrv.URL,
		UserInfoURL:  infoSrv.URL,
	})

	info, err := g.Exchange(context.Background(), "code-abc")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}

	if gotCode != "code-abc" {
		t.Fatalf("expected code to be forwarded, got %q", gotCode)
	}
	if gotBearer != "Bearer access-xyz" {
		t.Fatalf("expected bearer header, got %q", gotBearer)
	}
	if info.Provider != "google" || info.ProviderUserID != "goog-42" || info.Email != "user@example.com" {
		t.Fatalf("unexpected user info: %+v", info)
	}
}

func TestGoogle_Exchange_TokenError(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenSrv.Close()

	g := oauth.NewGoogle(oauth.GoogleConfig{TokenURL: tokenSrv.URL})

	_, err := g.Exchange(context.Background(), "bad-code")
	if err == nil || !strings.Contains(err.Error(), "exchange token") {
		t.Fatalf("expected token exchange error, got %v", err)
	}
}
