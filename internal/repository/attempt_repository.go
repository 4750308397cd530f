package repository

import (
	"exam_proctor_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// CreateWithReport persists a new attempt together with its empty session
// report in one transaction, so the 1:1 pair can never half-exist.
func (r *AttemptRepository) CreateWithReport(attempt *model.Attempt) (*model.SessionReport, error) {
	report := &model.SessionReport{}
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		report.AttemptID = attempt.ID
		return tx.Create(report).Error
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *AttemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) CountByUserAndTest(userID, testID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).
		Where("user_id = ? AND test_id = ?", userID, testID).Count(&count).Error
	return count, err
}

func (r *AttemptRepository) ListByUser(userID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("user_id = ?", userID).Order("started_at desc").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListByTest(testID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("test_id = ?", testID).Order("started_at desc").Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) ListSubmittedByTest(testID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Where("test_id = ? AND status = ?", testID, model.AttemptSubmitted).
		Order("submitted_at desc").Find(&attempts).Error
	return attempts, err
}

// UpsertAnswer writes the latest answer text for (attempt, question),
// overwriting any earlier submission for the same question.
func (r *AttemptRepository) UpsertAnswer(attemptID, questionID uint, answerText string) error {
	var existing model.Answer
	err := r.DB.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).
		First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return err
	}
	if existing.ID == 0 {
		return r.DB.Create(&model.Answer{
			AttemptID:  attemptID,
			QuestionID: questionID,
			AnswerText: answerText,
		}).Error
	}
	existing.AnswerText = answerText
	return r.DB.Save(&existing).Error
}

func (r *AttemptRepository) ListAnswers(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.Where("attempt_id = ?", attemptID).Find(&answers).Error
	return answers, err
}
