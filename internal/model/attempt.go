package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptSubmitted  AttemptStatus = "SUBMITTED"
)

// Attempt is one user's single run at a test. Status moves IN_PROGRESS ->
// SUBMITTED exactly once; SUBMITTED is terminal and freezes score, answers
// and the session report. MaxScore is snapshotted from the question marks at
// start time, so later authoring edits never change an in-flight attempt.
//
// swagger:model Attempt
type Attempt struct {
	BaseModel

	TestID      uint          `gorm:"index;type:bigint unsigned" json:"testId"`
	UserID      uint          `gorm:"index;type:bigint unsigned" json:"userId"`
	StartedAt   time.Time     `json:"startedAt"`
	SubmittedAt *time.Time    `json:"submittedAt,omitempty"`
	Status      AttemptStatus `gorm:"size:20;default:'IN_PROGRESS';index" json:"status"`
	MaxScore    int           `json:"maxScore"`
	Score       *int          `json:"score,omitempty"`
}

func (Attempt) TableName() string {
	return "attempts"
}

func (a *Attempt) Terminal() bool {
	return a.Status == AttemptSubmitted
}
