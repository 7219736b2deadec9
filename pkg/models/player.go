package models

import "time"

// Permission flags carried in the JWT permissions claim
const (
	// PermissionShopAdmin allows restocking shops and starting new days
	PermissionShopAdmin int64 = 1 << 0
	// PermissionShopDebug allows opening shops regardless of their conditions
	PermissionShopDebug int64 = 1 << 1
)

// Player represents an authenticated client
type Player struct {
	// From JWT claims
	ID          string `json:"id"`          // Converted from int64 user_id
	Username    string `json:"username"`    // JWT claim
	Email       string `json:"email"`       // JWT claim
	UserType    string `json:"user_type"`   // JWT claim (deprecated, use permissions)
	Permissions int64  `json:"permissions"` // JWT claim: bitwise permission flags
	Activated   int64  `json:"activated"`   // JWT claim: activation timestamp or ban status
	AuthMethod  string `json:"auth_method"` // JWT claim: "password" or "oauth"

	// Connection state
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`
}

// IsActive checks if the player account is activated and not banned
func (p *Player) IsActive() bool {
	// activated > 0 means activated
	// activated == 0 means not activated
	// activated == -1 means banned
	return p.Activated > 0
}

// IsBanned checks if the player is banned
func (p *Player) IsBanned() bool {
	return p.Activated == -1
}

// HasPermission reports whether every bit of perm is granted
func (p *Player) HasPermission(perm int64) bool {
	return p.Permissions&perm == perm
}

// IsAdmin checks if the player may restock shops
func (p *Player) IsAdmin() bool {
	return p.HasPermission(PermissionShopAdmin)
}
