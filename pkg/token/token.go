// Package token issues and verifies the JWTs used for sessions and
// for the email confirmation / password reset links.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"aginventory/pkg/models"
)

// Purposes for email-link tokens. A confirm token must not open the
// reset form and vice versa.
const (
	PurposeConfirm = "confirm"
	PurposeReset   = "reset"
)

const (
	SessionTTL = 24 * time.Hour
	ConfirmTTL = 24 * time.Hour
	ResetTTL   = 30 * time.Minute
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Manager signs session tokens with the base secret and email-link
// tokens with a salt-derived key, mirroring the separate signing
// context the confirmation links had in the original deployment.
type Manager struct {
	secret []byte
	salted []byte
}

func NewManager(secret, salt string) *Manager {
	return &Manager{
		secret: []byte(secret),
		salted: []byte(secret + salt),
	}
}

// Session creates the bearer token for a logged-in brother.
func (m *Manager) Session(brother models.Brother) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["jti"] = uuid.New().String()
	claims["brother_id"] = brother.ID
	claims["email"] = brother.Email
	claims["name"] = brother.FullName()
	claims["is_admin"] = brother.IsAdmin
	claims["exp"] = time.Now().Add(SessionTTL).Unix()
	return token.SignedString(m.secret)
}

// SessionClaims is the identity carried by a session token.
type SessionClaims struct {
	BrotherID uint
	Email     string
	Name      string
	IsAdmin   bool
}

// ParseSession verifies a bearer token and extracts the identity.
func (m *Manager) ParseSession(raw string) (SessionClaims, error) {
	claims, err := m.parse(raw, m.secret)
	if err != nil {
		return SessionClaims{}, err
	}
	id, ok := claims["brother_id"].(float64)
	if !ok {
		return SessionClaims{}, ErrInvalidToken
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	isAdmin, _ := claims["is_admin"].(bool)
	return SessionClaims{
		BrotherID: uint(id),
		Email:     email,
		Name:      name,
		IsAdmin:   isAdmin,
	}, nil
}

// EmailToken creates a purpose-scoped token embedding the address, for
// confirmation and reset links.
func (m *Manager) EmailToken(email, purpose string, ttl time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["jti"] = uuid.New().String()
	claims["email"] = email
	claims["purpose"] = purpose
	claims["exp"] = time.Now().Add(ttl).Unix()
	return token.SignedString(m.salted)
}

// ParseEmailToken verifies an email-link token and returns the address
// it was issued for. The purpose must match.
func (m *Manager) ParseEmailToken(raw, purpose string) (string, error) {
	claims, err := m.parse(raw, m.salted)
	if err != nil {
		return "", err
	}
	if p, _ := claims["purpose"].(string); p != purpose {
		return "", ErrInvalidToken
	}
	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrInvalidToken
	}
	return email, nil
}

func (m *Manager) parse(raw string, key []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
