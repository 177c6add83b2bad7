package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guttosm/quantlevels/internal/domain/models"
	"github.com/guttosm/quantlevels/internal/storage"
)

type stubRepo struct {
	latest    *time.Time
	latestErr error
	rows      []models.Level
	listErr   error

	listedDate time.Time
	listedZone *models.Zone
}

func (s *stubRepo) LatestRecordedDate(_ context.Context) (*time.Time, error) { return s.latest, nil }
func (s *stubRepo) LatestDate(_ context.Context, _ string) (*time.Time, error) {
	return s.latest, s.latestErr
}
func (s *stubRepo) ListLevels(_ context.Context, date time.Time, _ string, zone *models.Zone) ([]models.Level, error) {
	s.listedDate = date
	s.listedZone = zone
	return s.rows, s.listErr
}
func (s *stubRepo) UpsertIngestionLog(_ context.Context, _ time.Time, _ storage.WriteMode, _ int) error {
	return nil
}

func TestLevelService_TableDriven(t *testing.T) {
	day := time.Date(2025, 8, 28, 0, 0, 0, 0, time.UTC)
	other := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	rows := []models.Level{{Date: day, Instrument: "SPX", StartPrice: 6500}}

	cases := []struct {
		name     string
		repo     *stubRepo
		date     *time.Time
		wantDate time.Time
		wantErr  error
		wantRows int
	}{
		{name: "latest date", repo: &stubRepo{latest: &day, rows: rows}, wantDate: day, wantRows: 1},
		{name: "explicit date", repo: &stubRepo{latest: &day, rows: rows}, date: &other, wantDate: other, wantRows: 1},
		{name: "empty table", repo: &stubRepo{}, wantErr: ErrNoData},
		{name: "no rows for date", repo: &stubRepo{latest: &day}, wantDate: day, wantErr: ErrNoData},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewLevelService(tc.repo)
			got, out, err := svc.GetLevels(context.Background(), tc.date, "SPX", nil)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tc.wantDate) || !tc.repo.listedDate.Equal(tc.wantDate) {
				t.Fatalf("date = %v (listed %v), want %v", got, tc.repo.listedDate, tc.wantDate)
			}
			if len(out) != tc.wantRows {
				t.Fatalf("rows = %d, want %d", len(out), tc.wantRows)
			}
		})
	}
}

func TestLevelService_PropagatesErrors(t *testing.T) {
	boom := errors.New("db down")

	svc := NewLevelService(&stubRepo{latestErr: boom})
	if _, _, err := svc.GetLevels(context.Background(), nil, "SPX", nil); !errors.Is(err, boom) {
		t.Fatalf("latest lookup: got %v", err)
	}

	day := time.Date(2025, 8, 28, 0, 0, 0, 0, time.UTC)
	svc = NewLevelService(&stubRepo{listErr: boom})
	if _, _, err := svc.GetLevels(context.Background(), &day, "SPX", nil); !errors.Is(err, boom) {
		t.Fatalf("list: got %v", err)
	}
}

func TestLevelService_PassesZone(t *testing.T) {
	day := time.Date(2025, 8, 28, 0, 0, 0, 0, time.UTC)
	repo := &stubRepo{rows: []models.Level{{Date: day}}}
	zone := models.ZoneSell

	if _, _, err := NewLevelService(repo).GetLevels(context.Background(), &day, "SPX", &zone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.listedZone == nil || *repo.listedZone != models.ZoneSell {
		t.Fatalf("zone not forwarded: %v", repo.listedZone)
	}
}
