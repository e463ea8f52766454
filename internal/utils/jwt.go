// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const claimTokenIssuer = "dpp-transfer"

var ErrClaimTokenExpired = errors.New("claim token expired")

// ClaimClaims identify a transfer request inside a signed claim link.
type ClaimClaims struct {
	TransferID   string `json:"tid"`
	TransferCode string `json:"code"`
	jwt.RegisteredClaims
}

type ClaimTokenIssuer struct {
	secret []byte
}

func NewClaimTokenIssuer(secret string) *ClaimTokenIssuer {
	return &ClaimTokenIssuer{secret: []byte(secret)}
}

// Issue signs a claim token valid from issuedAt until expiresAt.
func (i *ClaimTokenIssuer) Issue(transferID, transferCode string, issuedAt, expiresAt time.Time) (string, error) {
	claims := ClaimClaims{
		TransferID:   transferID,
		TransferCode: transferCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    claimTokenIssuer,
			Subject:   transferID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// Parse verifies the signature and checks expiry against now rather than the
// wall clock.
func (i *ClaimTokenIssuer) Parse(tokenString string, now time.Time) (*ClaimClaims, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	token, err := parser.ParseWithClaims(tokenString, &ClaimClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ClaimClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claim token")
	}
	if claims.Issuer != claimTokenIssuer || claims.TransferID == "" {
		return nil, errors.New("invalid claim token")
	}
	if !claims.VerifyExpiresAt(now, true) {
		return nil, ErrClaimTokenExpired
	}
	return claims, nil
}
