package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	RoleBuyer = "buyer"
	RoleAdmin = "admin"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	BuyerID uuid.UUID
	Role    string
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	BuyerID uuid.UUID `json:"buyer_id"`
	Role    string    `json:"role"`
	jwt.RegisteredClaims
}
