// Package common contains shared constants and sentinel errors used across
// dreamteller components.
package common

const (
	// AuthorizationHeaderName carries the session token on API requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix is accepted, but not required, in front of server-side tokens.
	BearerPrefix = "Bearer "

	// OnboardingSeenKey is the local metadata key for the onboarding flag.
	OnboardingSeenKey = "has_seen_onboarding"
)
