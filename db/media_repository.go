package db

import (
	"github.com/amorlink/amorlink/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type MediaRepository interface {
	SaveMedia(media *models.Media) error
}

type mediaRepo struct {
	DB *gorm.DB
}

func NewMediaRepo(db *GormDB) MediaRepository {
	return &mediaRepo{db.DB}
}

func (m *mediaRepo) SaveMedia(media *models.Media) error {
	err := m.DB.Create(media).Error
	return errors.Wrap(err, "gorm.Create media error")
}
