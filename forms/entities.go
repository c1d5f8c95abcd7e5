package forms

import (
	"strconv"

	"studioflow/models"
)

// ClientInput holds the free-text client fields. Nothing is required.
type ClientInput struct {
	Name    string `form:"name"`
	Company string `form:"company"`
	Email   string `form:"email"`
	Phone   string `form:"phone"`
	Notes   string `form:"notes"`
}

type ProjectInput struct {
	Name        string `form:"name"`
	ClientID    string `form:"client_id,omitempty"`
	Status      string `form:"status" validate:"status"`
	Description string `form:"description"`
	Notes       string `form:"notes"`
	StartDate   string `form:"start_date"`
	DueDate     string `form:"due_date"`
}

func ClientFromForm(f *Form) models.Client {
	var in ClientInput
	f.Decode(&in)
	return models.Client{
		Name:    in.Name,
		Company: in.Company,
		Email:   in.Email,
		Phone:   in.Phone,
		Notes:   in.Notes,
	}
}

// ValidateProject checks status and, when withClient is set, client_id.
func ValidateProject(f *Form, withClient bool) bool {
	var in ProjectInput
	bind(f, &in)
	if withClient {
		if err := validate.Var(in.ClientID, "required,number"); err != nil {
			f.AddError("client_id", "SelectValidClient")
		}
	}
	return f.Valid()
}

// ProjectFromForm builds a project from a form that passed ValidateProject.
func ProjectFromForm(f *Form) models.Project {
	var in ProjectInput
	f.Decode(&in)
	clientID, _ := strconv.Atoi(in.ClientID)
	return models.Project{
		Name:        in.Name,
		ClientID:    clientID,
		Status:      models.Status(in.Status),
		Description: in.Description,
		Notes:       in.Notes,
		StartDate:   in.StartDate,
		DueDate:     in.DueDate,
	}
}

// ClientForm prefills a form with a stored client for editing.
func ClientForm(c models.Client) *Form {
	f := New(nil)
	f.Fill(ClientInput{
		Name:    c.Name,
		Company: c.Company,
		Email:   c.Email,
		Phone:   c.Phone,
		Notes:   c.Notes,
	})
	return f
}

// ProjectForm leaves client_id empty for a project without a client.
func ProjectForm(p models.Project) *Form {
	in := ProjectInput{
		Name:        p.Name,
		Status:      string(p.Status),
		Description: p.Description,
		Notes:       p.Notes,
		StartDate:   p.StartDate,
		DueDate:     p.DueDate,
	}
	if p.ClientID != 0 {
		in.ClientID = strconv.Itoa(p.ClientID)
	}
	f := New(nil)
	f.Fill(in)
	return f
}
