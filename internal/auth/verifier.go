package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-storefront/internal/common"
)

const (
	defaultAccessTTL = 15 * time.Minute
	rolesClaim       = "roles"
	roleAdmin        = "admin"
)

var errInvalidToken = common.Unauthorized("invalid token")

// Identity is the caller resolved from a verified access token.
type Identity struct {
	UserID string
	Admin  bool
}

// Config configures a Verifier.
type Config struct {
	Secret    string
	Issuer    string
	Audience  string
	AccessTTL time.Duration
	ClockSkew time.Duration
}

// Verifier signs and verifies HS256 access tokens. Identities are issued elsewhere;
// the storefront only needs to resolve the buyer behind a bearer token.
type Verifier struct {
	secret    []byte
	issuer    string
	audience  string
	accessTTL time.Duration
	clockSkew time.Duration
	claims    ClaimsPolicy
	now       func() time.Time
}

// NewVerifier constructs a Verifier with defaults applied.
func NewVerifier(cfg Config) (*Verifier, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "storefront"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "storefront-api"
	}
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}
	return &Verifier{
		secret:    []byte(secret),
		issuer:    issuer,
		audience:  audience,
		accessTTL: accessTTL,
		clockSkew: clockSkew,
		claims:    ClaimsPolicy{Issuer: issuer, Audience: audience, ClockSkew: clockSkew},
		now: time.Now,
	}, nil
}

// WithNow allows tests to override the time provider.
func (v *Verifier) WithNow(now func() time.Time) {
	if now != nil {
		v.now = now
	}
}

// ParseAccessToken validates token and returns its subject.
func (v *Verifier) ParseAccessToken(token string) (string, error) {
	id, err := v.Identify(token)
	if err != nil {
		return "", err
	}
	return id.UserID, nil
}

// Identify validates token and returns the caller it names.
func (v *Verifier) Identify(token string) (Identity, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Identity{}, common.Unauthorized("missing token")
	}
	algorithm, err := tokenAlgorithm(trimmed)
	if err != nil {
		return Identity{}, common.NewAppError(errInvalidToken.Code, errInvalidToken.Message, errInvalidToken.HTTPStatus, err)
	}
	if algorithm != jwa.HS256 {
		return Identity{}, common.NewAppError(errInvalidToken.Code, errInvalidToken.Message, errInvalidToken.HTTPStatus,
			fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, v.secret), jwt.WithValidate(false))
	if err != nil {
		return Identity{}, common.NewAppError(errInvalidToken.Code, errInvalidToken.Message, errInvalidToken.HTTPStatus, err)
	}
	id, err := v.claims.Identity(parsed, v.now())
	if err != nil {
		return Identity{}, common.NewAppError(errInvalidToken.Code, errInvalidToken.Message, errInvalidToken.HTTPStatus, err)
	}
	return id, nil
}

// SignAccessToken issues a token for userID carrying roles.
func (v *Verifier) SignAccessToken(userID string, roles ...string) (string, time.Time, error) {
	now := v.now()
	expiresAt := now.Add(v.accessTTL)
	builder := jwt.NewBuilder().
		Subject(userID).
		Issuer(v.issuer).
		Audience([]string{v.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-v.clockSkew)).
		Expiration(expiresAt)
	if len(roles) > 0 {
		builder = builder.Claim(rolesClaim, roles)
	}
	token, err := builder.Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, v.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

func tokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) != 1 {
		return "", errors.New("auth: token must carry exactly one signature")
	}
	headers := signatures[0].ProtectedHeaders()
	if headers == nil {
		return "", errors.New("auth: token missing protected headers")
	}
	alg := headers.Algorithm()
	switch alg {
	case "":
		return "", errors.New("auth: token missing algorithm")
	case jwa.NoSignature:
		return "", errors.New("auth: token uses none algorithm")
	}
	return alg, nil
}
