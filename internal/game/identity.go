package game

import "time"

type Role string

const (
	RolePlayer    Role = "player"
	RoleReserved  Role = "reserved"
	RoleJoiner    Role = "joiner"
	RoleSpectator Role = "spectator"
)

// Resolution is what a caller identity amounts to within one game.
type Resolution struct {
	Role      Role    `json:"role"`
	Color     Color   `json:"color,omitempty"`
	ExpiresIn int     `json:"expires_in,omitempty"`
	Available []Color `json:"available_colors"`
}

// Resolve maps identity to its role, first match wins: committed player,
// reservation holder, eligible joiner, spectator. Every spectator
// resolution increments SpectatorCount, repeat visits included.
func (g *Game) Resolve(identity string, now time.Time) Resolution {
	g.ExpireStale(now)
	res := Resolution{Available: g.AvailableAt(now)}

	if c, ok := g.ColorOf(identity); ok {
		res.Role, res.Color = RolePlayer, c
		return res
	}
	if c, ok := g.ReservedBy(identity, now); ok {
		res.Role, res.Color = RoleReserved, c
		res.ExpiresIn = g.ReservationExpiresIn(c, now)
		return res
	}
	if g.CommittedCount() < 2 {
		res.Role = RoleJoiner
		return res
	}
	g.SpectatorCount++
	g.touch(now)
	res.Role = RoleSpectator
	return res
}
