package accounts

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/lunchpool/pickem/internal/domain/user"
	"github.com/lunchpool/pickem/internal/platform/logging"
	"github.com/lunchpool/pickem/internal/platform/resilience"
	"github.com/lunchpool/pickem/internal/usecase"
)

type stubMemberSource struct {
	members map[string]user.User
	err     error
	calls   int
}

func (s *stubMemberSource) GetByUsername(_ context.Context, username string) (user.User, bool, error) {
	s.calls++
	if s.err != nil {
		return user.User{}, false, s.err
	}
	member, ok := s.members[username]
	return member, ok, nil
}

func newVerifier(srvURL string, members MemberSource, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		BaseURL:        srvURL,
		IntrospectPath: "/v1/auth/introspect",
		AdminKey:       "admin-secret",
		CircuitBreaker: breaker,
		Logger:         logging.NewNop(),
	}, members)
}

func TestVerifyAccessToken_SendsAdminKeyAndBindsMember(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/v1/auth/introspect" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("x-admin-key"); got != "admin-secret" {
			t.Fatalf("unexpected x-admin-key: %s", got)
		}

		var req map[string]string
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if req["token"] != "token-abc" {
			t.Fatalf("unexpected token value: %s", req["token"])
		}

		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
			"active":   true,
			"user_id":  "idp-123",
			"username": "alice",
			"email":    "alice@example.com",
		})
	}))
	defer srv.Close()

	members := &stubMemberSource{members: map[string]user.User{
		"alice": {ID: 7, Username: "alice", DisplayName: "Alice", IsAdmin: true},
	}}
	client := newVerifier(srv.URL, members, resilience.CircuitBreakerConfig{})

	principal, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if err != nil {
		t.Fatalf("verify token failed: %v", err)
	}

	if principal.UserID != 7 {
		t.Fatalf("unexpected user id: %d", principal.UserID)
	}
	if principal.Username != "alice" {
		t.Fatalf("unexpected username: %s", principal.Username)
	}
	if !principal.IsAdmin {
		t.Fatal("admin flag should come from the member row")
	}
}

func TestVerifyAccessToken_InactiveToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{"active": false})
	}))
	defer srv.Close()

	members := &stubMemberSource{}
	client := newVerifier(srv.URL, members, resilience.CircuitBreakerConfig{})

	_, err := client.VerifyAccessToken(context.Background(), "invalid-token")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if members.calls != 0 {
		t.Fatalf("inactive tokens must not reach the member lookup, got %d calls", members.calls)
	}
}

func TestVerifyAccessToken_ForbiddenMappedToDependencyUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer srv.Close()

	client := newVerifier(srv.URL, &stubMemberSource{}, resilience.CircuitBreakerConfig{})

	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestVerifyAccessToken_UnknownMemberRejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
			"active":   true,
			"username": "mallory",
		})
	}))
	defer srv.Close()

	client := newVerifier(srv.URL, &stubMemberSource{members: map[string]user.User{}}, resilience.CircuitBreakerConfig{})

	_, err := client.VerifyAccessToken(context.Background(), "token-abc")
	if !errors.Is(err, usecase.ErrUnauthorized) {
		t.Fatalf("a verified identity without a member row is unauthorized, got %v", err)
	}
}

func TestVerifyAccessToken_UsesPrincipalCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = sonic.ConfigDefault.NewEncoder(w).Encode(map[string]any{
			"active":   true,
			"username": "bob",
		})
	}))
	defer srv.Close()

	members := &stubMemberSource{members: map[string]user.User{
		"bob": {ID: 3, Username: "bob", DisplayName: "Bob"},
	}}
	client := newVerifier(srv.URL, members, resilience.CircuitBreakerConfig{})

	for i := 0; i < 3; i++ {
		principal, err := client.VerifyAccessToken(context.Background(), "cached-token")
		if err != nil {
			t.Fatalf("verify token failed: %v", err)
		}
		if principal.UserID != 3 {
			t.Fatalf("unexpected user id: %d", principal.UserID)
		}
	}

	if calls.Load() != 1 {
		t.Fatalf("expected one introspection call with cache, got %d", calls.Load())
	}
	if members.calls != 1 {
		t.Fatalf("expected one member lookup with cache, got %d", members.calls)
	}
}

func TestVerifyAccessToken_CircuitOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newVerifier(srv.URL, &stubMemberSource{}, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	if _, err := client.VerifyAccessToken(context.Background(), "token-1"); err == nil {
		t.Fatal("expected the first call to fail")
	}

	_, err := client.VerifyAccessToken(context.Background(), "token-2")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable from the open circuit, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("the open circuit must not reach upstream, got %d calls", got)
	}
}
