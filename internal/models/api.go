package models

import "time"

// SaveProgressRequest is the body of POST /api/save-progress. It doubles
// as the attempt payload the sync bridge forwards from a device.
type SaveProgressRequest struct {
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	MessageID int       `json:"messageId"`
	Action    Action    `json:"action"`
	Correct   *bool     `json:"correct,omitempty"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// UserStats is the condensed counter block returned after a save.
type UserStats struct {
	TotalAttempts  int `json:"totalAttempts"`
	CorrectAnswers int `json:"correctAnswers"`
	Accuracy       int `json:"accuracy"`
}

type SaveProgressResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message,omitempty"`
	UserStats *UserStats `json:"userStats,omitempty"`
	Error     string     `json:"error,omitempty"`
}

type UserStatsResponse struct {
	Success bool        `json:"success"`
	User    *UserRecord `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
