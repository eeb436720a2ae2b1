package service

import (
	"context"
	"log/slog"
	"time"

	"internet-cafe-api/internal/model"
	"internet-cafe-api/internal/statistics"
	"internet-cafe-api/pkg/errors"
)

// StatisticsService aggregates revenue and usage over a date range. It never writes.
type StatisticsService struct {
	reader statistics.Reader
	logger *slog.Logger
	now    func() time.Time
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(reader statistics.Reader, logger *slog.Logger) *StatisticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatisticsService{reader: reader, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

func checkRange(from, to time.Time) error {
	if from.After(to) {
		return errors.InvalidParameterError("from", "start date must not be after end date")
	}
	return nil
}

// GetSummary builds the dashboard view for [from, to].
func (s *StatisticsService) GetSummary(ctx context.Context, from, to time.Time) (*model.StatisticsSummary, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	days, err := s.GetRevenueByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	counts, err := s.reader.Counts(ctx, from, to)
	if err != nil {
		return nil, translate(err, "retrieve statistics counts")
	}
	sessions, err := s.reader.SessionsInRange(ctx, from, to)
	if err != nil {
		return nil, translate(err, "retrieve sessions")
	}

	return &model.StatisticsSummary{
		From:                   from,
		To:                     to,
		TotalRevenue:           statistics.TotalRevenue(days),
		ActiveUsersCount:       counts.ActiveUsers,
		ActiveSessionsCount:    counts.ActiveSessions,
		ComputersInUseCount:    counts.ComputersInUse,
		AvailableComputerCount: counts.ComputersAvailable,
		AverageSessionMinutes:  statistics.AverageMinutes(sessions),
		PeakUsageHours:         statistics.PeakHours(statistics.UsageByHour(sessions, s.now()), statistics.DefaultPeakHours),
		TopUsers:               statistics.TopUsers(sessions, statistics.DefaultTopUsers),
	}, nil
}

// GetRevenueByDay returns usage revenue per UTC day, zero-filled.
func (s *StatisticsService) GetRevenueByDay(ctx context.Context, from, to time.Time) ([]model.DailyRevenue, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	amounts, err := s.reader.UsageRevenueByDay(ctx, from, to)
	if err != nil {
		return nil, translate(err, "retrieve daily revenue")
	}
	return statistics.ZeroFillDays(from, to, amounts), nil
}

// GetUsageByHour returns 24 hour buckets of overlapping sessions.
func (s *StatisticsService) GetUsageByHour(ctx context.Context, from, to time.Time) ([]model.HourlyUsage, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	sessions, err := s.reader.SessionsInRange(ctx, from, to)
	if err != nil {
		return nil, translate(err, "retrieve sessions")
	}
	return statistics.UsageByHour(sessions, s.now()), nil
}

// GetTopUsers ranks users by spend. A non-positive limit uses the default of ten.
func (s *StatisticsService) GetTopUsers(ctx context.Context, from, to time.Time, limit int) ([]model.TopUser, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}

	sessions, err := s.reader.SessionsInRange(ctx, from, to)
	if err != nil {
		return nil, translate(err, "retrieve sessions")
	}
	return statistics.TopUsers(sessions, limit), nil
}

// GetRevenueSummary averages revenue over all registered users and computers.
func (s *StatisticsService) GetRevenueSummary(ctx context.Context, from, to time.Time) (*model.RevenueSummary, error) {
	days, err := s.GetRevenueByDay(ctx, from, to)
	if err != nil {
		return nil, err
	}
	counts, err := s.reader.Counts(ctx, from, to)
	if err != nil {
		return nil, translate(err, "retrieve statistics counts")
	}

	total := statistics.TotalRevenue(days)
	s.logger.Debug("revenue summary computed", "from", from, "to", to, "total", total.StringFixed(2))

	return &model.RevenueSummary{
		TotalRevenue:              total,
		AverageRevenuePerUser:     statistics.Average(total, counts.TotalUsers),
		AverageRevenuePerComputer: statistics.Average(total, counts.TotalComputers),
		DailyRevenue:              days,
	}, nil
}
