// Package jwt emite y valida los tokens de acceso de tenants.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken indica que el token no pudo validarse (firma,
	// expiración, issuer o claims malformados).
	ErrInvalidToken = errors.New("invalid token")
)

// Issuer firma tokens HS256 con un secreto compartido.
type Issuer struct {
	secret []byte
	iss    string
	ttl    time.Duration
}

// NewIssuer crea un Issuer. El secreto no puede ser vacío.
func NewIssuer(secret, iss string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt: empty secret")
	}
	return &Issuer{secret: []byte(secret), iss: iss, ttl: ttl}, nil
}

// TTL retorna la vigencia configurada de los tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Sign emite un token para el tenant dado.
func (i *Issuer) Sign(tenantID string) (string, error) {
	now := time.Now().UTC()
	claims := jwtv5.MapClaims{
		"iss": i.iss,
		"sub": tenantID,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return tk.SignedString(i.secret)
}

// Parse valida el token y retorna el tenant ID (claim sub).
func (i *Issuer) Parse(raw string) (string, error) {
	tk, err := jwtv5.Parse(raw, func(t *jwtv5.Token) (any, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwtv5.WithIssuer(i.iss),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil || !tk.Valid {
		return "", ErrInvalidToken
	}
	sub, err := tk.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
