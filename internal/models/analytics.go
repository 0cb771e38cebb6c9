package models

import "time"

// PageView is a single recorded view of a public page.
type PageView struct {
	ID        int64     `json:"id"`
	Path      string    `json:"path"`
	Referrer  string    `json:"referrer,omitempty"`
	Day       string    `json:"day"` // YYYY-MM-DD, for cheap grouping
	CreatedAt time.Time `json:"created_at"`
}

// PathCount is an aggregated view count for one path.
type PathCount struct {
	Path  string `json:"path"`
	Count int64  `json:"count"`
}

// DayCount is an aggregated view count for one day.
type DayCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// AnalyticsStats is the admin dashboard aggregation.
type AnalyticsStats struct {
	TotalViews int64       `json:"total_views"`
	TopPaths   []PathCount `json:"top_paths"`
	ByDay      []DayCount  `json:"by_day"`
	Since      time.Time   `json:"since"`
}
