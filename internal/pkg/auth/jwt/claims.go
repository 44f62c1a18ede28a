package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the structure of the JSON Web Token (JWT) claims for pairchat.
// It includes standard claims required by the JWT specification and custom claims
// necessary for identifying and authorizing users within the chat system.
type Payload struct {
	// StandardClaims embeds the necessary JWT standard fields such as Exp (Expiration),
	// Iat (Issued At), and Iss (Issuer). These are crucial for token validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// ID is the stable user identifier assigned by the account store.
	ID string `json:"id"`

	// Username is the unique login name, also used as the hub's authenticated
	// identity when a WebSocket connection is accepted.
	Username string `json:"username"`

	// Role is the account role ("user" or "admin") applied by the authorization gate.
	Role string `json:"role"`
}
