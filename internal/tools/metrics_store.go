package tools

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// MetricsStore provides read access to campaign delivery metrics. Tools
// query it; nothing in the orchestration core writes to it during a turn.
type MetricsStore struct {
	conn *sql.DB
}

// DayMetric is one day of delivery data for a campaign.
type DayMetric struct {
	Day         string
	Impressions int64
	Clicks      int64
	Spend       float64
}

// OpenMetricsStore opens the metrics database at the given path, creating
// the schema if it does not exist yet.
func OpenMetricsStore(path string) (*MetricsStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create metrics directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open metrics database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS campaigns (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		daily_budget REAL NOT NULL
	);
	CREATE TABLE IF NOT EXISTS daily_metrics (
		campaign_id TEXT NOT NULL,
		day TEXT NOT NULL,
		impressions INTEGER NOT NULL DEFAULT 0,
		clicks INTEGER NOT NULL DEFAULT 0,
		spend REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (campaign_id, day)
	);`
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create metrics schema: %w", err)
	}

	return &MetricsStore{conn: conn}, nil
}

// Close closes the underlying database.
func (s *MetricsStore) Close() error {
	return s.conn.Close()
}

// Campaigns returns all campaign IDs in the store.
func (s *MetricsStore) Campaigns() ([]string, error) {
	rows, err := s.conn.Query("SELECT id FROM campaigns ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DailyBudget returns the configured daily budget for a campaign.
func (s *MetricsStore) DailyBudget(campaignID string) (float64, error) {
	var budget float64
	err := s.conn.QueryRow("SELECT daily_budget FROM campaigns WHERE id = ?", campaignID).Scan(&budget)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("unknown campaign %q", campaignID)
	}
	if err != nil {
		return 0, fmt.Errorf("lookup budget: %w", err)
	}
	return budget, nil
}

// RecentMetrics returns up to windowDays of daily metrics for a campaign,
// most recent day last.
func (s *MetricsStore) RecentMetrics(campaignID string, windowDays int) ([]DayMetric, error) {
	rows, err := s.conn.Query(`
		SELECT day, impressions, clicks, spend
		FROM daily_metrics
		WHERE campaign_id = ?
		ORDER BY day DESC
		LIMIT ?`, campaignID, windowDays)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	defer rows.Close()

	var metrics []DayMetric
	for rows.Next() {
		var m DayMetric
		if err := rows.Scan(&m.Day, &m.Impressions, &m.Clicks, &m.Spend); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(metrics)-1; i < j; i, j = i+1, j-1 {
		metrics[i], metrics[j] = metrics[j], metrics[i]
	}
	return metrics, nil
}

// AddCampaign inserts or replaces a campaign row. Used by seeding and tests.
func (s *MetricsStore) AddCampaign(id, name string, dailyBudget float64) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO campaigns (id, name, daily_budget) VALUES (?, ?, ?)",
		id, name, dailyBudget)
	return err
}

// AddDayMetric inserts or replaces one day of metrics. Used by seeding and tests.
func (s *MetricsStore) AddDayMetric(campaignID, day string, impressions, clicks int64, spend float64) error {
	_, err := s.conn.Exec(
		"INSERT OR REPLACE INTO daily_metrics (campaign_id, day, impressions, clicks, spend) VALUES (?, ?, ?, ?, ?)",
		campaignID, day, impressions, clicks, spend)
	return err
}

// SeedDemo populates the store with a small demo dataset when it is empty.
// Lets `steward ask` work out of the box without an upstream metrics feed.
func (s *MetricsStore) SeedDemo() error {
	ids, err := s.Campaigns()
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		return nil
	}

	campaigns := []struct {
		id     string
		name   string
		budget float64
	}{
		{"cmp-search-brand", "Search - Brand", 250},
		{"cmp-display-retarget", "Display - Retargeting", 400},
		{"cmp-video-awareness", "Video - Awareness", 600},
	}
	for _, c := range campaigns {
		if err := s.AddCampaign(c.id, c.name, c.budget); err != nil {
			return err
		}
	}

	today := time.Now()
	for i := 13; i >= 0; i-- {
		day := today.AddDate(0, 0, -i).Format("2006-01-02")
		// Retargeting overspends late in the window; the others pace flat.
		overspend := 1.0
		if i < 4 {
			overspend = 1.6
		}
		if err := s.AddDayMetric("cmp-search-brand", day, 12000, 380, 240); err != nil {
			return err
		}
		if err := s.AddDayMetric("cmp-display-retarget", day, 95000, 610, 400*overspend); err != nil {
			return err
		}
		if err := s.AddDayMetric("cmp-video-awareness", day, 210000, 290, 585); err != nil {
			return err
		}
	}
	return nil
}
