package roomdto

type MoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

type MoveInfo struct {
	Check      bool   `json:"check"`
	Captured   string `json:"captured,omitempty"`
	Promotion  bool   `json:"promotion"`
	GameOver   bool   `json:"game_over"`
	GameStatus string `json:"game_status"`
}

type MoveResponse struct {
	Status   string   `json:"status"`
	MoveInfo MoveInfo `json:"move_info"`
}
