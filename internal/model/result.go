package model

import "time"

// Result is the read-only reporting projection over Attempt + Test + User +
// the session verdict. It is assembled on demand and never stored.
//
// swagger:model Result
type Result struct {
	AttemptID   uint      `json:"attemptId"`
	TestID      uint      `json:"testId"`
	TestTitle   string    `json:"testTitle"`
	UserID      uint      `json:"userId"`
	UserName    string    `json:"userName"`
	UserEmail   string    `json:"userEmail"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"maxScore"`
	Percentage  float64   `json:"percentage"`
	SubmittedAt time.Time `json:"submittedAt"`
	IsValidTest *bool     `json:"isValidTest,omitempty"`
}
