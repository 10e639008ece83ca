package db

import (
	"github.com/amorlink/amorlink/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ModelRepository interface {
	ListModels(onlineOnly bool, page, limit int) ([]models.ModelProfile, int64, error)
	FindModelByID(id uint) (*models.ModelProfile, error)
	FindModelByUserID(userID uint) (*models.ModelProfile, error)
	SetModelOnline(userID uint, online bool) error
}

type modelRepo struct {
	DB *gorm.DB
}

func NewModelRepo(db *GormDB) ModelRepository {
	return &modelRepo{db.DB}
}

func (m *modelRepo) ListModels(onlineOnly bool, page, limit int) ([]models.ModelProfile, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}

	query := m.DB.Model(&models.ModelProfile{})
	if onlineOnly {
		query = query.Where("is_online = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "gorm.Count models error")
	}

	var profiles []models.ModelProfile
	err := query.Order("is_online DESC, rating DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&profiles).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "gorm.Find models error")
	}
	return profiles, total, nil
}

func (m *modelRepo) FindModelByID(id uint) (*models.ModelProfile, error) {
	var profile models.ModelProfile
	if err := m.DB.First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (m *modelRepo) FindModelByUserID(userID uint) (*models.ModelProfile, error) {
	var profile models.ModelProfile
	if err := m.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (m *modelRepo) SetModelOnline(userID uint, online bool) error {
	return m.DB.Model(&models.ModelProfile{}).Where("user_id = ?", userID).
		Update("is_online", online).Error
}
