package db

import (
	"context"
	"fmt"

	"studioflow/models"
)

const (
	upcomingLimit   = 5
	topClientsLimit = 5
)

// Dashboard computes the aggregate counts and short lists shown on the home page.
// Statuses outside the known set are counted in TotalProjects only.
func (s *Store) Dashboard(ctx context.Context) (models.Dashboard, error) {
	var d models.Dashboard

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM clients").Scan(&d.TotalClients); err != nil {
		return models.Dashboard{}, fmt.Errorf("failed to count clients: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects").Scan(&d.TotalProjects); err != nil {
		return models.Dashboard{}, fmt.Errorf("failed to count projects: %w", err)
	}

	if err := s.countStatuses(ctx, &d); err != nil {
		return models.Dashboard{}, err
	}

	upcoming, err := s.queryProjectSummaries(ctx,
		projectSummarySelect+
			" WHERE projects.due_date IS NOT NULL AND projects.due_date != ''"+
			" ORDER BY projects.due_date ASC, projects.id LIMIT ?",
		upcomingLimit,
	)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("failed to list upcoming projects: %w", err)
	}
	d.UpcomingProjects = upcoming

	top, err := s.topClients(ctx)
	if err != nil {
		return models.Dashboard{}, err
	}
	d.TopClients = top

	return d, nil
}

func (s *Store) countStatuses(ctx context.Context, d *models.Dashboard) error {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM projects GROUP BY status")
	if err != nil {
		return fmt.Errorf("failed to count statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return fmt.Errorf("failed to scan status count: %w", err)
		}
		switch models.Status(status) {
		case models.StatusCompleted:
			d.Completed = n
		case models.StatusInProgress:
			d.InProgress = n
		case models.StatusPending:
			d.Pending = n
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate status counts: %w", err)
	}
	return nil
}

// topClients ranks clients by project count; ties are ordered by name, then id.
func (s *Store) topClients(ctx context.Context) ([]models.TopClient, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT clients.id, clients.name, clients.company, COUNT(projects.id) AS total_projects
		FROM clients
		LEFT JOIN projects ON clients.id = projects.client_id
		GROUP BY clients.id
		ORDER BY total_projects DESC, clients.name, clients.id
		LIMIT ?`, topClientsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top clients: %w", err)
	}
	defer rows.Close()

	var top []models.TopClient
	for rows.Next() {
		var c models.TopClient
		if err := rows.Scan(&c.ID, &c.Name, &c.Company, &c.TotalProjects); err != nil {
			return nil, fmt.Errorf("failed to scan top client: %w", err)
		}
		top = append(top, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate top clients: %w", err)
	}
	return top, nil
}
