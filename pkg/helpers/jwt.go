package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager signs the two HS256 credentials the service issues: the access
// credential and the email verification token. Each uses its own secret so
// one can never be replayed as the other.
type JWTManager struct {
	AccessSecret []byte
	VerifySecret []byte
	AccessTTL    time.Duration
	VerifyTTL    time.Duration
	now          func() time.Time
}

func NewJWTManager(accessSecret, verifySecret string, accessTTL, verifyTTL time.Duration) *JWTManager {
	return &JWTManager{
		AccessSecret: []byte(accessSecret),
		VerifySecret: []byte(verifySecret),
		AccessTTL:    accessTTL,
		VerifyTTL:    verifyTTL,
		now:          time.Now,
	}
}

type AccessClaims struct {
	UserID   int64  `json:"uid"`
	PublicID string `json:"pid"`
	jwt.RegisteredClaims
}

type VerifyClaims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (m *JWTManager) registered(ttl time.Duration) (jwt.RegisteredClaims, time.Time) {
	now := m.now()
	exp := now.Add(ttl)
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
	}, exp
}

func (m *JWTManager) GenerateAccessToken(userID int64, publicID string) (string, time.Time, error) {
	rc, exp := m.registered(m.AccessTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{UserID: userID, PublicID: publicID, RegisteredClaims: rc})
	s, err := t.SignedString(m.AccessSecret)
	return s, exp, err
}

func (m *JWTManager) GenerateVerifyToken(userID int64, email string) (string, time.Time, error) {
	rc, exp := m.registered(m.VerifyTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &VerifyClaims{UserID: userID, Email: email, RegisteredClaims: rc})
	s, err := t.SignedString(m.VerifySecret)
	return s, exp, err
}

func (m *JWTManager) ParseAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenStr, claims, m.AccessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *JWTManager) ParseVerifyToken(tokenStr string) (*VerifyClaims, error) {
	claims := &VerifyClaims{}
	if err := m.parse(tokenStr, claims, m.VerifySecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *JWTManager) parse(tokenStr string, claims jwt.Claims, secret []byte) error {
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return err
	}
	if !tkn.Valid {
		return errors.New("invalid token")
	}
	return nil
}
