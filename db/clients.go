package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"studioflow/models"
)

const clientSummarySelect = `
	SELECT clients.id, clients.name, clients.company, clients.email, clients.phone, clients.notes,
	       COUNT(projects.id) AS project_count
	FROM clients
	LEFT JOIN projects ON clients.id = projects.client_id`

// ListClients returns every client ordered by name.
func (s *Store) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, company, email, phone, notes FROM clients ORDER BY name, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}

// ListClientSummaries returns every client ordered by name with its project count.
func (s *Store) ListClientSummaries(ctx context.Context) ([]models.ClientSummary, error) {
	return s.queryClientSummaries(ctx,
		clientSummarySelect+" GROUP BY clients.id ORDER BY clients.name, clients.id",
	)
}

// SearchClients matches q against name, company and email.
func (s *Store) SearchClients(ctx context.Context, q string) ([]models.ClientSummary, error) {
	p := likePattern(q)
	return s.queryClientSummaries(ctx,
		clientSummarySelect+`
	WHERE clients.name LIKE ? ESCAPE '\' OR clients.company LIKE ? ESCAPE '\' OR clients.email LIKE ? ESCAPE '\'
	GROUP BY clients.id ORDER BY clients.name, clients.id`,
		p, p, p,
	)
}

func (s *Store) queryClientSummaries(ctx context.Context, query string, args ...any) ([]models.ClientSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []models.ClientSummary
	for rows.Next() {
		var c models.ClientSummary
		if err := rows.Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Notes, &c.ProjectCount); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clients: %w", err)
	}
	return clients, nil
}

func (s *Store) GetClient(ctx context.Context, id int) (models.Client, error) {
	var c models.Client
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, company, email, phone, notes FROM clients WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Client{}, ErrNotFound
	}
	if err != nil {
		return models.Client{}, fmt.Errorf("failed to get client: %w", err)
	}
	return c, nil
}

// CreateClient inserts c and sets c.ID.
func (s *Store) CreateClient(ctx context.Context, c *models.Client) error {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO clients (name, company, email, phone, notes) VALUES (?, ?, ?, ?, ?)",
		c.Name, c.Company, c.Email, c.Phone, c.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read client id: %w", err)
	}
	c.ID = int(id)
	return nil
}

// UpdateClient overwrites every editable field of the client with c.ID.
func (s *Store) UpdateClient(ctx context.Context, c models.Client) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE clients SET name = ?, company = ?, email = ?, phone = ?, notes = ? WHERE id = ?",
		c.Name, c.Company, c.Email, c.Phone, c.Notes, c.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update client: %w", err)
	}
	return nil
}

func (s *Store) CountProjectsForClient(ctx context.Context, clientID int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects WHERE client_id = ?", clientID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

// DeleteClient removes the client row. Callers check CountProjectsForClient first.
func (s *Store) DeleteClient(ctx context.Context, id int) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}
