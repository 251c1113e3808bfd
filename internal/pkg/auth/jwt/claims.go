package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims carried by every session token. The
// Username it names is the trusted identity used for all presence and
// routing decisions: by the time a connection reaches the registry, this
// value has already been verified.
type Payload struct {
	// StandardClaims embeds the JWT standard fields (Exp, Iat, Iss) used for
	// validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// Username is the account's canonical login name.
	Username string `json:"username"`

	// Nickname is the display name shown alongside messages.
	Nickname string `json:"nickname,omitempty"`
}
