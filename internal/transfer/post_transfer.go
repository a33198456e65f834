package transfer

import "github.com/golang-jwt/jwt/v5"

// PostCreation is the form payload of the scheduled-post endpoint.
// Targets is a JSON array of {platform, kind} pairs.
type PostCreation struct {
	Caption       string
	Title         string
	Description   string
	Privacy       string
	ScheduledTime string
	Targets       string
}

type PostTargetInput struct {
	Platform string `json:"platform"`
	Kind     string `json:"kind"`
}

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
