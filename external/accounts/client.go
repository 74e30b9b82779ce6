package accounts

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/lunchpool/pickem/internal/domain/user"
	"github.com/lunchpool/pickem/internal/platform/logging"
	"github.com/lunchpool/pickem/internal/platform/resilience"
	"github.com/lunchpool/pickem/internal/usecase"
)

var errAccountsTransient = crerr.New("accounts transient failure")

// MemberSource resolves a verified username to the local pool member. The
// identity service proves who is calling; the member row carries the pool
// user id and the admin flag.
type MemberSource interface {
	GetByUsername(ctx context.Context, username string) (user.User, bool, error)
}

type ClientConfig struct {
	HTTPClient      *http.Client
	BaseURL         string
	IntrospectPath  string
	AdminKey        string
	Timeout         time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
	CircuitBreaker  resilience.CircuitBreakerConfig
	Logger          *logging.Logger
}

type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	members       MemberSource
	cache         *principalCache
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

func NewClient(cfg ClientConfig, members MemberSource) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	maxEntries := cfg.CacheMaxEntries
	if maxEntries <= 0 {
		maxEntries = 4096
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(cfg.BaseURL, cfg.IntrospectPath),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		members:       members,
		cache:         newPrincipalCache(cacheTTL, maxEntries),
		breaker:       resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		logger:        logger,
	}
}

// VerifyAccessToken introspects a bearer token and binds the identity to a
// pool member. Verified principals are cached under the hashed token, so a
// busy client costs one introspection and one member lookup per TTL window.
func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	cacheKey := hashToken(token)
	if principal, ok := c.cache.Get(cacheKey); ok {
		return principal, nil
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "accounts circuit breaker rejected request", "state", c.breaker.State())
		return user.Principal{}, fmt.Errorf("%w: identity service is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	identity, err := c.introspect(ctx, token)
	c.recordCircuitResult(err)
	if err != nil {
		return user.Principal{}, err
	}

	member, found, err := c.members.GetByUsername(ctx, identity.Username)
	if err != nil {
		return user.Principal{}, fmt.Errorf("resolve pool member username=%s: %w", identity.Username, err)
	}
	if !found {
		c.logger.DebugContext(ctx, "verified identity has no pool membership",
			"username", identity.Username,
			"identity_user_id", identity.UserID,
		)
		return user.Principal{}, fmt.Errorf("%w: no pool membership for this identity", usecase.ErrUnauthorized)
	}

	principal := user.Principal{
		UserID:   member.ID,
		Username: member.Username,
		IsAdmin:  member.IsAdmin,
	}
	c.cache.Set(cacheKey, principal)

	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (introspectResponse, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return introspectResponse{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return introspectResponse{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return introspectResponse{}, fmt.Errorf("%w: request introspection: %v", errAccountsTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return introspectResponse{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		// 403 rejects the service's own admin key, not the caller's token.
		return introspectResponse{}, fmt.Errorf("%w: introspection rejected the service credentials", usecase.ErrDependencyUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return introspectResponse{}, fmt.Errorf("%w: read introspect response: %v", errAccountsTransient, err)
	}

	if resp.StatusCode != http.StatusOK {
		if isRetryableStatus(resp.StatusCode) {
			return introspectResponse{}, fmt.Errorf("%w: introspection status=%d", errAccountsTransient, resp.StatusCode)
		}
		c.logger.WarnContext(ctx, "accounts introspection non-200", "status_code", resp.StatusCode)
		return introspectResponse{}, fmt.Errorf("introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return introspectResponse{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}

	if !decoded.Active {
		return introspectResponse{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	decoded.Username = strings.TrimSpace(decoded.Username)
	if decoded.Username == "" {
		return introspectResponse{}, fmt.Errorf("invalid introspect response: username is empty")
	}

	return decoded, nil
}

func (c *Client) recordCircuitResult(err error) {
	if err != nil && isAccountsCircuitFailure(err) {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func isAccountsCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errAccountsTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active   bool   `json:"active"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
