package provider

import "github.com/yourname/bloomhealth/internal/health"

// Source hands out a health.Provider bound to a single user.
type Source interface {
	For(userID string) health.Provider
}
