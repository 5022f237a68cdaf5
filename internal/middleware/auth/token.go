package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrSignatureInvalid  = errors.New("token signature is invalid")
	ErrExpired           = errors.New("token has expired")
	ErrMalformedEnvelope = errors.New("token payload is malformed")
)

// SubjectClaims is the application payload sealed inside every token.
type SubjectClaims struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// envelopeClaims is what actually gets signed: the sealed payload and the
// registered time claims, nothing else.
type envelopeClaims struct {
	Data string `json:"data"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies two-layer tokens: the claims are sealed with
// the encryption key first, then the envelope is signed as an HS256 JWT.
type TokenCodec struct {
	signingSecret []byte
	encryptionKey []byte
	ttl           time.Duration
	now           func() time.Time
}

func NewTokenCodec(signingSecret, encryptionKey string, ttl time.Duration) (*TokenCodec, error) {
	if len(encryptionKey) != 32 {
		return nil, ErrInvalidKey
	}
	if signingSecret == "" {
		return nil, errors.New("signing secret must not be empty")
	}
	return &TokenCodec{
		signingSecret: []byte(signingSecret),
		encryptionKey: []byte(encryptionKey),
		ttl:           ttl,
		now:           time.Now,
	}, nil
}

// TTL returns how long issued tokens stay valid.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue seals the claims and signs the envelope.
func (c *TokenCodec) Issue(claims SubjectClaims) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("encode claims: %w", err)
	}

	envelope, err := Seal(payload, c.encryptionKey)
	if err != nil {
		return "", fmt.Errorf("seal claims: %w", err)
	}

	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, envelopeClaims{
		Data: envelope,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	})
	return token.SignedString(c.signingSecret)
}

// Verify checks signature and expiry before touching the envelope, then opens
// and decodes it.
func (c *TokenCodec) Verify(tokenString string) (SubjectClaims, error) {
	var claims envelopeClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return c.signingSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SubjectClaims{}, ErrExpired
		}
		return SubjectClaims{}, ErrSignatureInvalid
	}

	if claims.Data == "" {
		return SubjectClaims{}, ErrMalformedEnvelope
	}

	payload, err := Open(claims.Data, c.encryptionKey)
	if err != nil {
		return SubjectClaims{}, ErrDecryption
	}

	var subject SubjectClaims
	if err := json.Unmarshal(payload, &subject); err != nil {
		return SubjectClaims{}, ErrMalformedEnvelope
	}
	if subject.UserID == "" || !subject.Role.Valid() {
		return SubjectClaims{}, ErrMalformedEnvelope
	}
	return subject, nil
}
