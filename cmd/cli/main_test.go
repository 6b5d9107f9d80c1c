package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func withTempConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestTokenFile_SaveLoadRoundTrip(t *testing.T) {
	withTempConfig(t)

	tf := tokenFile{
		AccessToken:  "acc",
		RefreshToken: "ref",
		ExpiresAt:    time.Now().Add(time.Minute).Truncate(time.Second),
	}
	if err := saveTokens(tf); err != nil {
		t.Fatalf("saveTokens: %v", err)
	}

	got, err := loadTokens()
	if err != nil {
		t.Fatalf("loadTokens: %v", err)
	}
	if got.AccessToken != tf.AccessToken || got.RefreshToken != tf.RefreshToken {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	tok, err := accessToken()
	if err != nil || tok != "acc" {
		t.Fatalf("accessToken: %q %v", tok, err)
	}
}

func TestAccessToken_Expired(t *testing.T) {
	withTempConfig(t)

	tf := tokenFile{AccessToken: "acc", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := saveTokens(tf); err != nil {
		t.Fatalf("saveTokens: %v", err)
	}
	if _, err := accessToken(); err == nil {
		t.Fatalf("want error on expired token")
	}
}

func TestAccessToken_Missing(t *testing.T) {
	withTempConfig(t)

	if _, err := accessToken(); err == nil {
		t.Fatalf("want error with no token file")
	}
}

func TestCall_SendsAuthAndDecodesErrors(t *testing.T) {
	var gotAuth, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if ck, err := r.Cookie("refreshToken"); err == nil {
			gotCookie = ck.Value
		}
		switch r.URL.Path {
		case "/ok":
			_ = json.NewEncoder(w).Encode(map[string]string{"hello": "world"})
		case "/bad":
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid password"})
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	var out map[string]string
	if err := call(ctx, srv.URL, http.MethodGet, "/ok", nil, "tok", "ref", &out); err != nil {
		t.Fatalf("call: %v", err)
	}
	if out["hello"] != "world" {
		t.Fatalf("bad body: %v", out)
	}
	if gotAuth != "Bearer tok" || gotCookie != "ref" {
		t.Fatalf("auth not sent: auth=%q cookie=%q", gotAuth, gotCookie)
	}

	err := call(ctx, srv.URL, http.MethodGet, "/bad", nil, "", "", nil)
	var apiErr *apiError
	if err == nil || !errors.As(err, &apiErr) {
		t.Fatalf("want apiError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Msg != "Invalid password" {
		t.Fatalf("bad apiError: %+v", apiErr)
	}
}

func TestLogin_CapturesRefreshCookie(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "refreshToken", Value: "ref-tok", HttpOnly: true})
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": "acc-tok"})
	}))
	defer srv.Close()

	tf, err := login(context.Background(), srv.URL, "a@x.com", "p")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tf.AccessToken != "acc-tok" || tf.RefreshToken != "ref-tok" {
		t.Fatalf("bad token file: %+v", tf)
	}
}
