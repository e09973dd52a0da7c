package repository

import (
	"context"
	"time"

	"github.com/Limense/cochera-management-system-sub000/internal/db"
)

type DashboardRepository struct {
	DB *db.Postgres
}

type DashboardSummary struct {
	SpacesTotal       int64
	SpacesAvailable   int64
	SpacesOccupied    int64
	SpacesMaintenance int64
	ActiveSessions    int64
	TodayExits        int64
	TodayRevenue      int64
	OpenShifts        int64
}

// Summary aggregates occupancy and today's takings for the operations board.
func (r DashboardRepository) Summary(ctx context.Context) (DashboardSummary, error) {
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	var s DashboardSummary
	err := r.DB.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM spaces),
			(SELECT COUNT(*) FROM spaces WHERE state = 'available'),
			(SELECT COUNT(*) FROM spaces WHERE state = 'occupied'),
			(SELECT COUNT(*) FROM spaces WHERE state = 'maintenance'),
			(SELECT COUNT(*) FROM parking_sessions WHERE exit_at IS NULL),
			(SELECT COUNT(*) FROM parking_sessions
				WHERE payment_state = 'paid' AND exit_at::date = CURRENT_DATE),
			(SELECT COALESCE(SUM(amount),0) FROM parking_sessions
				WHERE payment_state = 'paid' AND exit_at::date = CURRENT_DATE),
			(SELECT COUNT(*) FROM shifts WHERE state = 'open')
	`).Scan(&s.SpacesTotal, &s.SpacesAvailable, &s.SpacesOccupied, &s.SpacesMaintenance,
		&s.ActiveSessions, &s.TodayExits, &s.TodayRevenue, &s.OpenShifts)
	return s, err
}

type RevenuePoint struct {
	Date   string
	Amount int64
	Exits  int64
}

// RevenueSeries returns daily paid totals for the trailing N days.
func (r DashboardRepository) RevenueSeries(ctx context.Context, days int) ([]RevenuePoint, error) {
	if days <= 0 || days > 90 {
		days = 7
	}
	ctx, cancel := r.DB.WithTimeout(ctx)
	defer cancel()

	start := time.Now().AddDate(0, 0, -days+1).Format("2006-01-02")
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT exit_at::date AS day, COALESCE(SUM(amount),0) AS amount, COUNT(*) AS exits
		FROM parking_sessions
		WHERE payment_state = 'paid' AND exit_at >= $1::date
		GROUP BY day
		ORDER BY day ASC
	`, start)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []RevenuePoint
	for rows.Next() {
		var p RevenuePoint
		var day time.Time
		if err := rows.Scan(&day, &p.Amount, &p.Exits); err != nil {
			return nil, err
		}
		p.Date = day.Format("2006-01-02")
		points = append(points, p)
	}
	return points, rows.Err()
}
