package services

import (
	"context"
	"errors"
	"strings"

	"github.com/yoockh/fluentspeak/internal/models"
	pgrepo "github.com/yoockh/fluentspeak/internal/repositories/postgres"
	"github.com/yoockh/fluentspeak/internal/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ScenarioService interface {
	Create(ctx context.Context, title, description string, tags []string) (*models.Scenario, error)
	Get(ctx context.Context, id string) (*models.Scenario, error)
	List(ctx context.Context, limit int) ([]models.Scenario, error)
}

type scenarioService struct {
	scenarios pgrepo.ScenarioRepository
}

func NewScenarioService(scenarios pgrepo.ScenarioRepository) ScenarioService {
	return &scenarioService{scenarios: scenarios}
}

func (s *scenarioService) Create(ctx context.Context, title, description string, tags []string) (*models.Scenario, error) {
	const op = "ScenarioService.Create"

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}

	clean := make(pq.StringArray, 0, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			clean = append(clean, t)
		}
	}

	row := &models.Scenario{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Tags:        clean,
	}
	if err := s.scenarios.Create(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create scenario", err)
	}
	return row, nil
}

func (s *scenarioService) Get(ctx context.Context, id string) (*models.Scenario, error) {
	const op = "ScenarioService.Get"

	if _, err := uuid.Parse(id); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, "scenario id must be a uuid", err)
	}
	row, err := s.scenarios.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "scenario not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get scenario", err)
	}
	return row, nil
}

func (s *scenarioService) List(ctx context.Context, limit int) ([]models.Scenario, error) {
	const op = "ScenarioService.List"

	rows, err := s.scenarios.List(ctx, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list scenarios", err)
	}
	return rows, nil
}
