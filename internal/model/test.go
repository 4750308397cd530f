package model

import "time"

// swagger:model Test
type Test struct {
	BaseModel

	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	TotalMarks  int       `gorm:"default:0" json:"totalMarks"`
	Published   bool      `gorm:"default:false;index" json:"published"`
	MaxAttempts int       `gorm:"default:1" json:"maxAttempts"`
	CreatedBy   uint      `gorm:"index;type:bigint unsigned" json:"createdBy"`
}

func (Test) TableName() string {
	return "tests"
}

// WindowOpen reports whether attempts may be started at the given instant.
// The window gates starting only; submission of an open attempt is always
// accepted.
func (t *Test) WindowOpen(now time.Time) bool {
	return !now.Before(t.StartTime) && !now.After(t.EndTime)
}
