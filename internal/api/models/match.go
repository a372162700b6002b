package models

import "time"

// Match is one finished game in the ledger.
type Match struct {
	ID            string    `json:"id"`
	RoomID        string    `json:"room_id"`
	WinnerID      int       `json:"winner_id"`
	WinnerSession string    `json:"winner_session"`
	LoserSession  string    `json:"loser_session"`
	Shots         int       `json:"shots"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// ListRequest defines the query of the list endpoints.
type ListRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// BotRequest defines the query of the add-bot endpoint.
type BotRequest struct {
	Difficulty string `form:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}
