package roomdto

type ColorRequest struct {
	Color string `json:"color"`
}

type CreateResponse struct {
	Status  string `json:"status"`
	GameID  string `json:"game_id"`
	Message string `json:"message,omitempty"`
}

type ReserveResponse struct {
	Status    string `json:"status"`
	Color     string `json:"color"`
	ExpiresIn int    `json:"expires_in"`
	Message   string `json:"message,omitempty"`
}

type CancelResponse struct {
	Status    string `json:"status"`
	Cancelled bool   `json:"cancelled"`
}

type CommitResponse struct {
	Status      string `json:"status"`
	Color       string `json:"color"`
	GameStarted bool   `json:"game_started"`
	Message     string `json:"message,omitempty"`
}

type ChooseResponse struct {
	Status  string `json:"status"`
	Color   string `json:"color"`
	Message string `json:"message,omitempty"`
}

type ReadyResponse struct {
	Status      string `json:"status"`
	GameStarted bool   `json:"game_started"`
	Message     string `json:"message,omitempty"`
}

type ColorsResponse struct {
	Status          string   `json:"status"`
	AvailableColors []string `json:"available_colors"`
}

// JoinResponse describes the caller's role in a game plus the current state.
type JoinResponse struct {
	Status          string   `json:"status"`
	GameID          string   `json:"game_id"`
	Role            string   `json:"role"`
	PlayerColor     string   `json:"player_color,omitempty"`
	CanChooseColor  bool     `json:"can_choose_color"`
	IsSpectator     bool     `json:"is_spectator"`
	AvailableColors []string `json:"available_colors"`
	ExpiresIn       int      `json:"reservation_expires_in,omitempty"`
	Game            Snapshot `json:"game"`
}
