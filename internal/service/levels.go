package service

import (
	"context"
	"errors"
	"time"

	"github.com/guttosm/quantlevels/internal/domain/models"
	"github.com/guttosm/quantlevels/internal/storage"
)

// ErrNoData is returned when nothing is stored for the requested date and ticker.
var ErrNoData = errors.New("no levels stored")

// LevelService defines the read side over stored levels.
type LevelService interface {
	GetLevels(ctx context.Context, date *time.Time, ticker string, zone *models.Zone) (time.Time, []models.Level, error)
}

type levelService struct {
	repo storage.LevelsRepository
}

func NewLevelService(repo storage.LevelsRepository) LevelService {
	return &levelService{repo: repo}
}

// GetLevels returns the levels stored for date, or for the latest stored date
// of ticker when date is nil. The resolved date is returned with the rows.
func (s *levelService) GetLevels(ctx context.Context, date *time.Time, ticker string, zone *models.Zone) (time.Time, []models.Level, error) {
	day := date
	if day == nil {
		latest, err := s.repo.LatestDate(ctx, ticker)
		if err != nil {
			return time.Time{}, nil, err
		}
		if latest == nil {
			return time.Time{}, nil, ErrNoData
		}
		day = latest
	}

	rows, err := s.repo.ListLevels(ctx, *day, ticker, zone)
	if err != nil {
		return *day, nil, err
	}
	if len(rows) == 0 {
		return *day, nil, ErrNoData
	}
	return *day, rows, nil
}
