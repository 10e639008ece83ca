package services

import (
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/amorlink/amorlink/config"
	"github.com/amorlink/amorlink/db"
	apiError "github.com/amorlink/amorlink/errors"
	"github.com/amorlink/amorlink/models"
	"gorm.io/gorm"
)

type ModelService interface {
	ListModels(onlineOnly bool, page, limit int) ([]models.ModelProfile, int64, *apiError.Error)
	GetModel(id uint) (*models.ModelProfile, *apiError.Error)
	// PriceForModel resolves the per-message price and display name of the
	// model behind the given user id. A PRICE_<NAME> env var overrides the
	// stored price; the configured default applies when neither is set.
	PriceForModel(modelUserID uint) (int, string, *apiError.Error)
	ProfileForUser(userID uint) (*models.ModelProfile, error)
	SetOnline(userID uint, online bool) error
}

type modelService struct {
	Config    *config.Config
	modelRepo db.ModelRepository
}

func NewModelService(modelRepo db.ModelRepository, conf *config.Config) ModelService {
	return &modelService{
		Config:    conf,
		modelRepo: modelRepo,
	}
}

func (m *modelService) ListModels(onlineOnly bool, page, limit int) ([]models.ModelProfile, int64, *apiError.Error) {
	profiles, total, err := m.modelRepo.ListModels(onlineOnly, page, limit)
	if err != nil {
		log.Printf("failed to list models: %v", err)
		return nil, 0, apiError.ErrInternalServerError
	}
	return profiles, total, nil
}

func (m *modelService) GetModel(id uint) (*models.ModelProfile, *apiError.Error) {
	profile, err := m.modelRepo.FindModelByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apiError.New("model not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	return profile, nil
}

func (m *modelService) PriceForModel(modelUserID uint) (int, string, *apiError.Error) {
	profile, err := m.modelRepo.FindModelByUserID(modelUserID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, "", apiError.New("model not found", http.StatusNotFound)
		}
		return 0, "", apiError.ErrInternalServerError
	}
	return m.resolvePrice(profile), profile.Name, nil
}

func (m *modelService) resolvePrice(profile *models.ModelProfile) int {
	if env := os.Getenv("PRICE_" + profile.Name); env != "" {
		if price, err := strconv.Atoi(env); err == nil && price > 0 {
			return price
		}
	}
	if profile.PricePerMessage > 0 {
		return profile.PricePerMessage
	}
	return m.Config.DefaultMessagePrice
}

func (m *modelService) ProfileForUser(userID uint) (*models.ModelProfile, error) {
	return m.modelRepo.FindModelByUserID(userID)
}

func (m *modelService) SetOnline(userID uint, online bool) error {
	return m.modelRepo.SetModelOnline(userID, online)
}
