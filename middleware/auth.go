package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"gamebank/models"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const BankerContextKey contextKey = "banker"

type Claims struct {
	BankerID uint   `json:"banker_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

var jwtSecret []byte

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func GenerateToken(banker *models.Banker, expiration time.Duration) (string, error) {
	claims := &Claims{
		BankerID: banker.ID,
		Username: banker.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// RequireBanker guards the administrative routes. The token is accepted from
// the session cookie or a Bearer header; failures answer with the same JSON
// envelope the client reads everywhere else.
func RequireBanker(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenString string
		cookie, err := r.Cookie("token")
		if err == nil {
			tokenString = cookie.Value
		}

		if tokenString == "" {
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					tokenString = parts[1]
				}
			}
		}

		if tokenString == "" {
			unauthorized(w, "banker login required")
			return
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			http.SetCookie(w, &http.Cookie{
				Name:     "token",
				Value:    "",
				Path:     "/",
				MaxAge:   -1,
				HttpOnly: true,
			})
			unauthorized(w, "session expired, please log in again")
			return
		}

		ctx := context.WithValue(r.Context(), BankerContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetBankerFromContext(ctx context.Context) *Claims {
	claims, ok := ctx.Value(BankerContextKey).(*Claims)
	if !ok {
		return nil
	}
	return claims
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data":  nil,
		"error": map[string]string{"type": "unauthorized", "message": message},
	})
}
