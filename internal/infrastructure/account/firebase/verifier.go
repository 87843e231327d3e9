package firebase

import (
	"context"
	"crypto/rsa"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/match-analysis/internal/domain/user"
	"github.com/riskibarqy/match-analysis/internal/platform/cache"
	"github.com/riskibarqy/match-analysis/internal/platform/logging"
	"github.com/riskibarqy/match-analysis/internal/platform/resilience"
	"github.com/riskibarqy/match-analysis/internal/usecase"
)

const (
	issuerPrefix   = "https://securetoken.google.com/"
	keysCacheKey   = "firebase:certs"
	clockSkew      = 30 * time.Second
	maxSubjectSize = 128

	// minForcedRefresh bounds how often an unknown kid may bypass the cert cache.
	minForcedRefresh = time.Minute
)

var errCertsTransient = crerr.New("firebase certs transient failure")

type Config struct {
	ProjectID    string
	CertsURL     string
	Timeout      time.Duration
	KeysCacheTTL time.Duration
	Circuit      resilience.CircuitBreakerConfig
}

// Verifier checks Firebase ID tokens against Google's rotating signing
// certificates.
type Verifier struct {
	httpClient *http.Client
	projectID  string
	certsURL   string
	keys       *cache.Store[map[string]*rsa.PublicKey]
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
	now        func() time.Time

	refreshEvery time.Duration
	lastForcedAt atomic.Int64
}

func NewVerifier(cfg Config, httpClient *http.Client, logger *logging.Logger) *Verifier {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	ttl := cfg.KeysCacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Verifier{
		httpClient:   httpClient,
		projectID:    strings.TrimSpace(cfg.ProjectID),
		certsURL:     strings.TrimSpace(cfg.CertsURL),
		keys:         cache.NewStore[map[string]*rsa.PublicKey](ttl),
		breaker:      resilience.NewFromConfig(cfg.Circuit),
		logger:       logger,
		now:          time.Now,
		refreshEvery: minForcedRefresh,
	}
}

type idTokenClaims struct {
	Email    string `json:"email"`
	AuthTime int64  `json:"auth_time"`
	jwt.RegisteredClaims
}

// VerifyIDToken returns the caller identity carried by a valid ID token.
// Signature, issuer, audience, expiry and subject are all checked.
func (v *Verifier) VerifyIDToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}
	if v.projectID == "" {
		return user.Principal{}, fmt.Errorf("%w: firebase project is not configured", usecase.ErrDependencyUnavailable)
	}

	var keyErr error
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(issuerPrefix+v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(v.now),
	)

	claims := &idTokenClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, err := v.publicKey(ctx, kid)
		if err != nil {
			keyErr = err
			return nil, err
		}
		return key, nil
	})
	if keyErr != nil && stderrors.Is(keyErr, usecase.ErrDependencyUnavailable) {
		return user.Principal{}, keyErr
	}
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: %s", usecase.ErrUnauthorized, err.Error())
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" || len(subject) > maxSubjectSize {
		return user.Principal{}, fmt.Errorf("%w: invalid subject", usecase.ErrUnauthorized)
	}
	if claims.AuthTime > 0 && time.Unix(claims.AuthTime, 0).After(v.now().Add(clockSkew)) {
		return user.Principal{}, fmt.Errorf("%w: auth_time is in the future", usecase.ErrUnauthorized)
	}

	return user.Principal{
		UID:   subject,
		Email: strings.TrimSpace(claims.Email),
	}, nil
}

// publicKey resolves kid from the cached certificate set. An unknown kid
// forces one refresh so a key rotation is picked up immediately, at most
// once per refreshEvery across all callers.
func (v *Verifier) publicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, fmt.Errorf("%w: token has no kid", usecase.ErrUnauthorized)
	}

	keys, err := v.keys.GetOrLoad(ctx, keysCacheKey, v.fetchKeys)
	if err != nil {
		return nil, err
	}
	if key, ok := keys[kid]; ok {
		return key, nil
	}

	if !v.claimForcedRefresh() {
		return nil, fmt.Errorf("%w: unknown signing key %q", usecase.ErrUnauthorized, kid)
	}
	v.keys.Delete(ctx, keysCacheKey)
	keys, err = v.keys.GetOrLoad(ctx, keysCacheKey, v.fetchKeys)
	if err != nil {
		return nil, err
	}
	if key, ok := keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: unknown signing key %q", usecase.ErrUnauthorized, kid)
}

func (v *Verifier) claimForcedRefresh() bool {
	now := v.now().UnixNano()
	last := v.lastForcedAt.Load()
	if last != 0 && now-last < int64(v.refreshEvery) {
		return false
	}
	return v.lastForcedAt.CompareAndSwap(last, now)
}

func (v *Verifier) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	var keys map[string]*rsa.PublicKey
	err := v.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		keys, err = v.downloadKeys(ctx)
		return err
	})
	if err != nil {
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			v.logger.WarnContext(ctx, "firebase certs circuit breaker rejected request", "state", v.breaker.State())
		} else {
			v.logger.WarnContext(ctx, "fetch firebase certs failed", "error", err)
		}
		return nil, fmt.Errorf("%w: firebase signing keys: %v", usecase.ErrDependencyUnavailable, err)
	}
	return keys, nil
}

func (v *Verifier) downloadKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "create certs request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request certs: %v", errCertsTransient, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read certs: %v", errCertsTransient, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: certs status=%d", errCertsTransient, resp.StatusCode)
	}

	var certs map[string]string
	if err := jsoniter.Unmarshal(body, &certs); err != nil {
		return nil, crerr.Wrap(err, "decode certs")
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemCert := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemCert))
		if err != nil {
			return nil, crerr.Wrapf(err, "parse cert kid=%s", kid)
		}
		keys[kid] = key
	}
	if len(keys) == 0 {
		return nil, crerr.New("certs response has no keys")
	}
	return keys, nil
}
