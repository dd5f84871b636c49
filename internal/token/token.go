// Package token mints room access credentials as HS256 signed JWTs.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// DefaultTTL is the token lifetime when none is configured.
const DefaultTTL = 6 * time.Hour

// Grants describe what the token holder may do in the room.
type Grants struct {
	RoomJoin     bool   `json:"roomJoin"`
	Room         string `json:"room"`
	CanPublish   bool   `json:"canPublish"`
	CanSubscribe bool   `json:"canSubscribe"`
}

// Issuer mints and verifies access tokens for room credentials. The api key
// becomes the token issuer claim; the secret signs with HS256.
type Issuer struct {
	apiKey string
	secret []byte
	ttl    time.Duration
}

// NewIssuer creates an issuer. ttl <= 0 uses the default.
func NewIssuer(apiKey, secret string, ttl time.Duration) (*Issuer, error) {
	if apiKey == "" || secret == "" {
		return nil, fmt.Errorf("api key and secret are required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{apiKey: apiKey, secret: []byte(secret), ttl: ttl}, nil
}

// Mint creates a signed token for the participant with the given grants.
func (i *Issuer) Mint(identity, name string, grants Grants) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  i.apiKey,
		"sub":  identity,
		"name": name,
		"nbf":  now.Unix(),
		"exp":  now.Add(i.ttl).Unix(),
		"video": map[string]interface{}{
			"roomJoin":     grants.RoomJoin,
			"room":         grants.Room,
			"canPublish":   grants.CanPublish,
			"canSubscribe": grants.CanSubscribe,
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns the participant identity and grants.
func (i *Issuer) Verify(tokenString string) (string, Grants, error) {
	tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", Grants{}, ErrExpiredToken
		}
		return "", Grants{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return "", Grants{}, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", Grants{}, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", Grants{}, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	var g Grants
	if video, ok := claims["video"].(map[string]interface{}); ok {
		g.RoomJoin, _ = video["roomJoin"].(bool)
		g.Room, _ = video["room"].(string)
		g.CanPublish, _ = video["canPublish"].(bool)
		g.CanSubscribe, _ = video["canSubscribe"].(bool)
	}
	return sub, g, nil
}
