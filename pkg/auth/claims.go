package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Payload is what local tooling puts into a minted token.
type Payload struct {
	UserID uuid.UUID
	Email  string
	Name   string
	JTI    string
}

// Claims is the verified token body. The caller id travels in the standard
// subject claim; email and name are profile hints for logs and receipts.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject, returning uuid.Nil when it is not a uuid.
func (c *Claims) UserID() uuid.UUID {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}
