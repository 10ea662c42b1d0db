package types

import "github.com/google/uuid"

// TokenClaims represents the claims carried by a pairing token.
type TokenClaims struct {
	DeviceID uuid.UUID `json:"device_id"`
}
