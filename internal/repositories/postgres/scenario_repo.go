package postgres

import (
	"context"
	"errors"

	"github.com/yoockh/fluentspeak/internal/models"
	"github.com/yoockh/fluentspeak/internal/utils"
	"gorm.io/gorm"
)

type ScenarioRepository interface {
	Create(ctx context.Context, s *models.Scenario) error
	GetByID(ctx context.Context, id string) (*models.Scenario, error)
	List(ctx context.Context, limit int) ([]models.Scenario, error)
}

type scenarioRepo struct {
	db *gorm.DB
}

func NewScenarioRepo(db *gorm.DB) ScenarioRepository {
	return &scenarioRepo{db: db}
}

func (r *scenarioRepo) Create(ctx context.Context, s *models.Scenario) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *scenarioRepo) GetByID(ctx context.Context, id string) (*models.Scenario, error) {
	var s models.Scenario
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *scenarioRepo) List(ctx context.Context, limit int) ([]models.Scenario, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Scenario
	err := r.db.WithContext(ctx).Order("title ASC").Limit(limit).Find(&rows).Error
	return rows, err
}
