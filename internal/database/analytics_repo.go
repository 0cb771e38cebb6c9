package database

import (
	"time"

	"nomod-backend/internal/models"
)

// AnalyticsRepo handles pageview database operations
type AnalyticsRepo struct{}

// NewAnalyticsRepo creates a new analytics repository
func NewAnalyticsRepo() *AnalyticsRepo {
	return &AnalyticsRepo{}
}

// Record stores one pageview
func (r *AnalyticsRepo) Record(view *models.PageView) error {
	result, err := DB.Exec(`
		INSERT INTO page_views (path, referrer, day) VALUES (?, ?, ?)
	`, view.Path, view.Referrer, view.Day)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	view.ID = id

	return nil
}

// Stats aggregates pageviews recorded since the given time.
func (r *AnalyticsRepo) Stats(since time.Time, topN int) (*models.AnalyticsStats, error) {
	stats := &models.AnalyticsStats{Since: since}

	err := DB.QueryRow(
		"SELECT COUNT(*) FROM page_views WHERE created_at >= ?", since,
	).Scan(&stats.TotalViews)
	if err != nil {
		return nil, err
	}

	rows, err := DB.Query(`
		SELECT path, COUNT(*) AS n FROM page_views
		WHERE created_at >= ?
		GROUP BY path ORDER BY n DESC LIMIT ?
	`, since, topN)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var pc models.PathCount
		if err := rows.Scan(&pc.Path, &pc.Count); err != nil {
			return nil, err
		}
		stats.TopPaths = append(stats.TopPaths, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dayRows, err := DB.Query(`
		SELECT day, COUNT(*) FROM page_views
		WHERE created_at >= ?
		GROUP BY day ORDER BY day
	`, since)
	if err != nil {
		return nil, err
	}
	defer dayRows.Close()

	for dayRows.Next() {
		var dc models.DayCount
		if err := dayRows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, err
		}
		stats.ByDay = append(stats.ByDay, dc)
	}

	return stats, dayRows.Err()
}

// DeleteOlderThan prunes pageviews recorded before the cutoff.
func (r *AnalyticsRepo) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result, err := DB.Exec("DELETE FROM page_views WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
