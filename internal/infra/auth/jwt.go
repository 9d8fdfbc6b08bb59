package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the session: who is acting and which crm they are scoped to.
type Claims struct {
	AgentName string `json:"agent_name"`
	CRMType   string `json:"crm_type"`
	jwt.RegisteredClaims
}

func (c *Claims) Session() entity.Session {
	return entity.Session{UserID: c.Subject, AgentName: c.AgentName, CRMType: c.CRMType}
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token for the session.
func (i *Issuer) Issue(s entity.Session) (string, error) {
	if s.CRMType == "" {
		return "", fmt.Errorf("session has no crm_type")
	}
	now := i.now()
	claims := &Claims{
		AgentName: s.AgentName,
		CRMType:   s.CRMType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse validates signature and expiry and returns the claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.CRMType == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
