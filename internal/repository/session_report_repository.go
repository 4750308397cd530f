package repository

import (
	"exam_proctor_backend/internal/model"

	"gorm.io/gorm"
)

type SessionReportRepository struct {
	DB *gorm.DB
}

func NewSessionReportRepository(db *gorm.DB) *SessionReportRepository {
	return &SessionReportRepository{DB: db}
}

func (r *SessionReportRepository) FindByAttempt(attemptID uint) (*model.SessionReport, error) {
	var report model.SessionReport
	if err := r.DB.Where("attempt_id = ?", attemptID).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *SessionReportRepository) Save(report *model.SessionReport) error {
	return r.DB.Save(report).Error
}
