package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIdentity is shown when no username is stored and the access
// token carries no usable claim.
const DefaultIdentity = "User"

// usernameFromToken extracts a username-like claim from a JWT access
// token without verifying the signature (verification is the server's
// job; the client only wants a display name). Fail-closed: any parse or
// claim problem yields the generic label, never an error.
func usernameFromToken(token string) string {
	parser := jwt.NewParser()
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return DefaultIdentity
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return DefaultIdentity
	}
	if name, ok := claims["username"].(string); ok && name != "" {
		return name
	}
	if id, ok := claims["user_id"]; ok {
		switch v := id.(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return DefaultIdentity
}
