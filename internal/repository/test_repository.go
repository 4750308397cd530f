package repository

import (
	"exam_proctor_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type TestRepository struct {
	DB *gorm.DB
}

func NewTestRepository(db *gorm.DB) *TestRepository {
	return &TestRepository{DB: db}
}

func (r *TestRepository) Create(test *model.Test) error {
	return r.DB.Create(test).Error
}

func (r *TestRepository) Update(test *model.Test) error {
	return r.DB.Save(test).Error
}

func (r *TestRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Test{}, id).Error
}

func (r *TestRepository) FindByID(id uint) (*model.Test, error) {
	var t model.Test
	if err := r.DB.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TestRepository) List(page, limit int) ([]model.Test, int64, error) {
	var tests []model.Test
	var total int64
	if err := r.DB.Model(&model.Test{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Order("id desc").Offset((page - 1) * limit).Limit(limit).Find(&tests).Error
	return tests, total, err
}

// ListAvailable returns published tests whose attempt window contains now.
func (r *TestRepository) ListAvailable(now time.Time) ([]model.Test, error) {
	var tests []model.Test
	err := r.DB.Where("published = ? AND start_time <= ? AND end_time >= ?", true, now, now).
		Order("start_time").Find(&tests).Error
	return tests, err
}
