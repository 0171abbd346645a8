package util

import (
	"time"

	"suggestion_board_backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the host identity: who the user is and which of the two
// roles they hold.
type Claims struct {
	UserID      string         `json:"user_id"`
	DisplayName string         `json:"display_name"`
	Login       string         `json:"login"`
	Role        model.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// User converts the claims into the identity entity the services consume.
func (c *Claims) User() model.User {
	return model.User{
		ID:          c.UserID,
		DisplayName: c.DisplayName,
		Login:       c.Login,
		Role:        c.Role,
	}
}

func GenerateJWT(user *model.User, secret string, expiration time.Duration) (string, error) {
	expirationTime := time.Now().Add(expiration)

	claims := &Claims{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Login:       user.Login,
		Role:        user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, err
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
