package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// ClaimsPolicy resolves the caller named by a signature-checked access token.
type ClaimsPolicy struct {
	Issuer    string
	Audience  string
	ClockSkew time.Duration
}

// Identity validates exp, nbf, iss and aud at now and requires the subject to
// be a user id. Holding the admin entry in the roles claim grants Admin.
func (p ClaimsPolicy) Identity(tok jwt.Token, now time.Time) (Identity, error) {
	if tok == nil {
		return Identity{}, errors.New("auth: token is nil")
	}
	opts := []jwt.ValidateOption{
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
		jwt.WithRequiredClaim(jwt.ExpirationKey),
		jwt.WithAcceptableSkew(p.ClockSkew),
	}
	if p.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.Issuer))
	}
	if p.Audience != "" {
		opts = append(opts, jwt.WithAudience(p.Audience))
	}
	if err := jwt.Validate(tok, opts...); err != nil {
		return Identity{}, err
	}

	subject := strings.TrimSpace(tok.Subject())
	if subject == "" {
		return Identity{}, errors.New("auth: token has no subject")
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return Identity{}, fmt.Errorf("auth: subject is not a user id: %w", err)
	}
	return Identity{UserID: userID.String(), Admin: hasRole(tok, roleAdmin)}, nil
}

func hasRole(tok jwt.Token, role string) bool {
	raw, ok := tok.Get(rolesClaim)
	if !ok {
		return false
	}
	var roles []string
	switch v := raw.(type) {
	case []string:
		roles = v
	case []any:
		for _, r := range v {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
