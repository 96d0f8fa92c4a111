package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/username/twgreports/backend/src/config"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// AuthService handles the portal's own login session: JWT access tokens,
// opaque refresh tokens and access-code comparison against the directory.
type AuthService struct {
	JWTSecret string
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{
		JWTSecret: secret,
	}
}

// HashAccessCode produces a bcrypt hash suitable for storing in the code
// column of the user directory instead of a plaintext code.
func HashAccessCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckAccessCode compares a supplied code against the stored directory value.
// Stored values starting with "$2" are treated as bcrypt hashes; anything else
// is compared in constant time as plaintext.
func CheckAccessCode(stored, supplied string) error {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied))
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) != 1 {
		return errors.New("access code mismatch")
	}
	return nil
}

func (a *AuthService) GenerateToken(username string) (string, error) {
	if config.Cfg == nil {
		// This should ideally not happen if LoadConfig is called at startup
		return "", errors.New("configuration not loaded, cannot determine token expiry")
	}
	// jti keeps tokens unique even when two are minted within the same second,
	// which matters for session rotation keyed on the token string.
	claims := jwt.MapClaims{
		"sub": username,
		"exp": time.Now().Add(config.Cfg.AccessTokenExpiry).Unix(),
		"iat": time.Now().Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.JWTSecret))
}

func (a *AuthService) GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (a *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(a.JWTSecret), nil
	})

	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		sub, ok := claims["sub"].(string)
		if !ok {
			return "", errors.New("invalid token: 'sub' claim missing or not a string")
		}
		return sub, nil
	}

	return "", errors.New("invalid token")
}
