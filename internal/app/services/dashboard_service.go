package services

import (
	"context"
	"errors"
	"time"

	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/repositories"
	"github.com/emre/schoolhub/internal/cache"
	"github.com/emre/schoolhub/internal/pkg/logger"
)

// Cache keys and TTL for dashboard aggregates
const (
	cacheKeyOverview   = "dashboard:overview"
	cacheKeySexCounts  = "dashboard:sex"
	cacheKeyAttendance = "dashboard:attendance"
	dashboardCacheTTL  = 5 * time.Minute
)

// DashboardService computes the admin dashboard aggregates. Results are
// cached briefly in Redis when a cache client is configured.
type DashboardService struct {
	repos *repositories.Repositories
	cache *cache.Cache
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(repos *repositories.Repositories, cacheClient *cache.Cache) *DashboardService {
	return &DashboardService{repos: repos, cache: cacheClient}
}

// Overview returns the entity counts shown on the dashboard cards
func (s *DashboardService) Overview(ctx context.Context) (dto.OverviewCounts, error) {
	var counts dto.OverviewCounts
	if err := s.cache.Get(ctx, cacheKeyOverview, &counts); err == nil {
		return counts, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.Warn().Err(err).Msg("Dashboard cache read failed")
	}

	for _, entry := range []struct {
		table string
		dest  *int
	}{
		{"students", &counts.Students},
		{"teachers", &counts.Teachers},
		{"parents", &counts.Parents},
		{"classes", &counts.Classes},
		{"events", &counts.Events},
	} {
		total, err := s.repos.CountTable(ctx, entry.table)
		if err != nil {
			return dto.OverviewCounts{}, err
		}
		*entry.dest = total
	}

	s.cache.Set(ctx, cacheKeyOverview, counts, dashboardCacheTTL)
	return counts, nil
}

// StudentsBySex returns the students-by-sex chart slices
func (s *DashboardService) StudentsBySex(ctx context.Context) ([]dto.SexCount, error) {
	var cached []dto.SexCount
	if err := s.cache.Get(ctx, cacheKeySexCounts, &cached); err == nil {
		return cached, nil
	}

	bySex, err := s.repos.StudentRepository.CountBySex(ctx)
	if err != nil {
		return nil, err
	}

	counts := []dto.SexCount{
		{Sex: string(models.SexMale), Count: bySex[models.SexMale]},
		{Sex: string(models.SexFemale), Count: bySex[models.SexFemale]},
	}
	s.cache.Set(ctx, cacheKeySexCounts, counts, dashboardCacheTTL)
	return counts, nil
}

// WeeklyAttendance returns present/absent buckets for the school days of the
// current week, zero-filled for days without records.
func (s *DashboardService) WeeklyAttendance(ctx context.Context) ([]dto.AttendanceDay, error) {
	var cached []dto.AttendanceDay
	if err := s.cache.Get(ctx, cacheKeyAttendance, &cached); err == nil {
		return cached, nil
	}

	monday := startOfWeek(time.Now())
	friday := monday.AddDate(0, 0, 4)

	tallies, err := s.repos.AttendanceRepository.CountByDay(ctx, monday, friday)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]repositories.DailyCount, len(tallies))
	for _, tally := range tallies {
		byDate[tally.Date.Format("2006-01-02")] = tally
	}

	days := []dto.AttendanceDay{}
	for offset := 0; offset < 5; offset++ {
		day := monday.AddDate(0, 0, offset)
		tally := byDate[day.Format("2006-01-02")]
		days = append(days, dto.AttendanceDay{
			Day:     day.Weekday().String()[:3],
			Present: tally.Present,
			Absent:  tally.Absent,
		})
	}

	s.cache.Set(ctx, cacheKeyAttendance, days, dashboardCacheTTL)
	return days, nil
}

// startOfWeek truncates t to the Monday of its week
func startOfWeek(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := int(t.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return t.AddDate(0, 0, -offset)
}
