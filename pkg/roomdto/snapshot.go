package roomdto

// Snapshot is the full state pushed to live subscribers.
type Snapshot struct {
	FEN                       string   `json:"fen"`
	Status                    string   `json:"status"`
	Turn                      string   `json:"turn"`
	WhiteReady                bool     `json:"white_ready"`
	BlackReady                bool     `json:"black_ready"`
	Spectators                int      `json:"spectators"`
	InCheck                   bool     `json:"in_check"`
	LastMove                  string   `json:"last_move"`
	GameOver                  bool     `json:"game_over"`
	Result                    string   `json:"result,omitempty"`
	AvailableColors           []string `json:"available_colors"`
	WhiteReservationExpiresIn int      `json:"white_reservation_expires_in"`
	BlackReservationExpiresIn int      `json:"black_reservation_expires_in"`
	HasWhitePlayer            bool     `json:"has_white_player"`
	HasBlackPlayer            bool     `json:"has_black_player"`
	UpdatedAt                 string   `json:"updated_at"`
}

// StreamMessage is one live event: a snapshot, a transient error notice,
// or the final connection_closed sentinel.
type StreamMessage struct {
	*Snapshot
	ConnectionClosed bool   `json:"connection_closed,omitempty"`
	Error            string `json:"error,omitempty"`
}

func (m StreamMessage) IsSnapshot() bool { return m.Snapshot != nil }
