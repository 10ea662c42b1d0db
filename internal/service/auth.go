package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/snapcal/backend/internal/types"
)

var ErrInvalidPairingKey = errors.New("invalid pairing key")

// AuthService pairs a device with this server. There are no user accounts:
// a single pairing key guards the tenant, and a successful pairing issues a
// signed token carrying a fresh device id.
type AuthService struct {
	pairingHash []byte
	jwtSecret   string
}

// Ensure AuthService implements IAuthService
var _ IAuthService = (*AuthService)(nil)

// NewAuthService hashes the configured pairing key up front so the plaintext
// is not retained.
func NewAuthService(pairingKey, jwtSecret string) (*AuthService, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pairingKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &AuthService{pairingHash: hash, jwtSecret: jwtSecret}, nil
}

// Pair verifies the pairing key and returns a signed device token.
func (s *AuthService) Pair(pairingKey string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.pairingHash, []byte(pairingKey)); err != nil {
		return "", ErrInvalidPairingKey
	}
	return s.generateToken(uuid.New())
}

func (s *AuthService) generateToken(deviceID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"device_id": deviceID.String(),
		"exp":       time.Now().Add(time.Hour * 24).Unix(),
		"iat":       time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		deviceIDStr, ok := claims["device_id"].(string)
		if !ok {
			return nil, errors.New("invalid token claims")
		}

		deviceID, err := uuid.Parse(deviceIDStr)
		if err != nil {
			return nil, err
		}

		return &types.TokenClaims{
			DeviceID: deviceID,
		}, nil
	}

	return nil, errors.New("invalid token")
}
