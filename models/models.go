package models

import "fmt"

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Hash     string `json:"-"`
}

type Client struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

// ClientSummary is a client annotated with its live project count.
type ClientSummary struct {
	Client
	ProjectCount int `json:"project_count"`
}

// Status is the closed set of project states.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Statuses lists every valid Status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown project status %q", s)
}

func (s Status) String() string { return string(s) }

type Project struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ClientID    int    `json:"client_id"`
	Status      Status `json:"status"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	StartDate   string `json:"start_date"`
	DueDate     string `json:"due_date"`
}

// ProjectSummary is a project joined with the name of its client.
type ProjectSummary struct {
	Project
	ClientName string `json:"client_name"`
}

// TopClient is a dashboard row for the clients owning the most projects.
type TopClient struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Company       string `json:"company"`
	TotalProjects int    `json:"total_projects"`
}

type Dashboard struct {
	TotalClients     int              `json:"total_clients"`
	TotalProjects    int              `json:"total_projects"`
	Completed        int              `json:"completed"`
	InProgress       int              `json:"in_progress"`
	Pending          int              `json:"pending"`
	UpcomingProjects []ProjectSummary `json:"upcoming_projects"`
	TopClients       []TopClient      `json:"top_clients"`
}

// Flash is a one-shot notice carried in the session until the next render.
type Flash struct {
	Category string
	Message  string
}
