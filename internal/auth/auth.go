package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/juanjparedez/mundobl/internal/models"
)

var (
	ErrMissingToken = errors.New("missing authorization")
	ErrInvalidToken = errors.New("invalid token")
	ErrDisabled     = errors.New("authentication is not configured")
)

// Claims are issued by the external identity provider. Only the role claim
// is authoritative here.
type Claims struct {
	Role  models.Role `json:"role"`
	Email string      `json:"email,omitempty"`
	Name  string      `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HMAC-signed tokens shared with the identity provider.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Enabled reports whether a secret is configured. Without one every
// protected route answers 401.
func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0
}

func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	if !v.Enabled() {
		return nil, ErrDisabled
	}
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// Sign issues an HS256 token. The identity provider normally does this;
// it is used by the CLI to mint local admin tokens.
func (v *Verifier) Sign(claims *Claims) (string, error) {
	if !v.Enabled() {
		return "", ErrDisabled
	}
	if claims.Issuer == "" {
		claims.Issuer = v.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// CheckPermission reports whether role is one of allowed. An empty allowed
// list admits any authenticated role.
func CheckPermission(role models.Role, allowed ...models.Role) bool {
	if len(allowed) == 0 {
		return role != ""
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
