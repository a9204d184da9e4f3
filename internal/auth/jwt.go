package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lodgeportal/internal/entity"
)

type Claims struct {
	Sub   string `json:"sub"` // username
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"` // aprendiz/companheiro/mestre
	jwt.RegisteredClaims
}

func GenerateToken(secret string, user entity.User, ttl time.Duration) (string, error) {
	c := Claims{
		Sub:   user.Username,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

func ParseToken(secret, tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := t.Claims.(*Claims); ok && t.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

// User rebuilds the session identity carried by the claims.
func (c *Claims) User() entity.User {
	return entity.User{
		Username: c.Sub,
		Name:     c.Name,
		Email:    c.Email,
		Role:     c.Role,
	}
}
