package model

// Answer is the latest submission for one (attempt, question) pair; a
// re-submission overwrites AnswerText in place. IsCorrect and MarksObtained
// are written by scoring at submission and are meaningless before that.
//
// swagger:model Answer
type Answer struct {
	BaseModel

	AttemptID     uint   `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned" json:"attemptId"`
	QuestionID    uint   `gorm:"uniqueIndex:idx_attempt_question;type:bigint unsigned" json:"questionId"`
	AnswerText    string `gorm:"size:1000" json:"answerText"`
	IsCorrect     bool   `gorm:"default:false" json:"isCorrect"`
	MarksObtained int    `gorm:"default:0" json:"marksObtained"`
}

func (Answer) TableName() string {
	return "answers"
}
