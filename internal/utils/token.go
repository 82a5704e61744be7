package utils

import (
	"time"

	"github.com/golang-jwt/jwt"
)

var tokenSecret = []byte("planning-poker-dev-secret")

// SetTokenSecret installs the signing secret from configuration; call
// it once at startup
func SetTokenSecret(secret string) {
	if secret != "" {
		tokenSecret = []byte(secret)
	}
}

// PlayerClaims binds a signed rejoin token to a stable player id
type PlayerClaims struct {
	PlayerID string `json:"player_id"`
	RoomCode string `json:"room_code"`
	jwt.StandardClaims
}

// GeneratePlayerToken issues the opaque token a client persists to
// reclaim its player after a dropped connection
func GeneratePlayerToken(playerID, roomCode string) (string, error) {
	now := time.Now()

	claims := PlayerClaims{
		PlayerID: playerID,
		RoomCode: roomCode,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(24 * time.Hour).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tokenSecret)
}

// ParsePlayerToken verifies a rejoin token and returns its claims
func ParsePlayerToken(token string) (*PlayerClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return tokenSecret, nil
	})

	if parsed != nil {
		if claims, ok := parsed.Claims.(*PlayerClaims); ok && parsed.Valid {
			return claims, nil
		}
	}

	return nil, err
}
