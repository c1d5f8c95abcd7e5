package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studioflow/models"
)

const projectColumns = "projects.id, projects.name, projects.client_id, projects.status, projects.description, projects.notes, projects.start_date, projects.due_date"

const projectSummarySelect = "SELECT " + projectColumns + ", clients.name FROM projects JOIN clients ON projects.client_id = clients.id"

// Projects without a due date sort after every dated project.
const projectListOrder = " ORDER BY (projects.due_date IS NULL OR projects.due_date = ''), projects.due_date, projects.id"

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner, extra ...any) (models.Project, error) {
	var p models.Project
	var status string
	dest := append([]any{&p.ID, &p.Name, &p.ClientID, &status, &p.Description, &p.Notes, &p.StartDate, &p.DueDate}, extra...)
	if err := row.Scan(dest...); err != nil {
		return models.Project{}, err
	}
	p.Status = models.Status(status)
	return p, nil
}

// ListProjects returns every project with its client name, soonest due first.
func (s *Store) ListProjects(ctx context.Context) ([]models.ProjectSummary, error) {
	return s.queryProjectSummaries(ctx, projectSummarySelect+projectListOrder)
}

// SearchProjects matches q against project name, client name and status.
func (s *Store) SearchProjects(ctx context.Context, q string) ([]models.ProjectSummary, error) {
	p := likePattern(q)
	return s.queryProjectSummaries(ctx,
		projectSummarySelect+
			` WHERE projects.name LIKE ? ESCAPE '\' OR clients.name LIKE ? ESCAPE '\' OR projects.status LIKE ? ESCAPE '\'`+
			projectListOrder,
		p, p, p,
	)
}

func (s *Store) queryProjectSummaries(ctx context.Context, query string, args ...any) ([]models.ProjectSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.ProjectSummary
	for rows.Next() {
		var ps models.ProjectSummary
		p, err := scanProject(rows, &ps.ClientName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		ps.Project = p
		projects = append(projects, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

// ListProjectsForClient returns the client's projects in insertion order.
func (s *Store) ListProjectsForClient(ctx context.Context, clientID int) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE client_id = ? ORDER BY projects.id", clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list client projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}
	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, id int) (models.Project, error) {
	p, err := scanProject(s.db.QueryRowContext(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, ErrNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// GetProjectSummary loads a project joined with its client's name.
func (s *Store) GetProjectSummary(ctx context.Context, id int) (models.ProjectSummary, error) {
	var ps models.ProjectSummary
	p, err := scanProject(s.db.QueryRowContext(ctx,
		projectSummarySelect+" WHERE projects.id = ?", id,
	), &ps.ClientName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProjectSummary{}, ErrNotFound
	}
	if err != nil {
		return models.ProjectSummary{}, fmt.Errorf("failed to get project: %w", err)
	}
	ps.Project = p
	return ps, nil
}

// CreateProject inserts p and sets p.ID.
func (s *Store) CreateProject(ctx context.Context, p *models.Project) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, client_id, status, description, notes, start_date, due_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.Name, p.ClientID, string(p.Status), p.Description, p.Notes, p.StartDate, p.DueDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read project id: %w", err)
	}
	p.ID = int(id)
	return nil
}

// UpdateProject overwrites every editable field. The owning client is kept.
func (s *Store) UpdateProject(ctx context.Context, p models.Project) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, status = ?, description = ?, notes = ?, start_date = ?, due_date = ?
		 WHERE id = ?`,
		p.Name, string(p.Status), p.Description, p.Notes, p.StartDate, p.DueDate, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}
