package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"studioflow/db"
	"studioflow/models"
)

func TestClientCRUD(t *testing.T) {
	app := newTestApp(t)
	app.signIn("alice")

	if r := app.get("/clients/new"); r.code != http.StatusOK {
		t.Fatalf("Expected new client form, got %d", r.code)
	}

	acme := app.createClient("Acme", "Acme Inc")

	list := app.get("/clients")
	if !strings.Contains(list.body, "Client created successfully.") {
		t.Error("Expected created flash on the list")
	}
	if !strings.Contains(list.body, "Acme Inc") {
		t.Error("Expected the client in the list")
	}

	detail := app.get(fmt.Sprintf("/clients/%d", acme.ID))
	if detail.code != http.StatusOK || !strings.Contains(detail.body, "Acme") {
		t.Fatalf("Expected client detail, got %d", detail.code)
	}

	edit := app.get(fmt.Sprintf("/clients/%d/edit", acme.ID))
	if edit.code != http.StatusOK || !strings.Contains(edit.body, `value="Acme Inc"`) {
		t.Fatalf("Expected prefilled edit form, got %d", edit.code)
	}

	r := app.post(fmt.Sprintf("/clients/%d/edit", acme.ID), url.Values{
		"name":  {"Acme Corp"},
		"email": {"hi@acme.test"},
	})
	if r.code != http.StatusSeeOther || r.location != fmt.Sprintf("/clients/%d", acme.ID) {
		t.Fatalf("Expected redirect to detail, got %d %q", r.code, r.location)
	}

	got, err := app.store.GetClient(context.Background(), acme.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	// Every field is overwritten, including the omitted company.
	want := models.Client{ID: acme.ID, Name: "Acme Corp", Email: "hi@acme.test"}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestClientWithEmptyNameIsAccepted(t *testing.T) {
	app := newTestApp(t)
	app.signIn("alice")

	r := app.post("/clients/new", url.Values{})
	if r.code != http.StatusSeeOther {
		t.Fatalf("Expected redirect, got %d", r.code)
	}
	clients, _ := app.store.ListClients(context.Background())
	if len(clients) != 1 || clients[0].Name != "" {
		t.Errorf("Expected one unnamed client, got %+v", clients)
	}
}

func TestGuardedClientDelete(t *testing.T) {
	app := newTestApp(t)
	app.signIn("alice")
	ctx := context.Background()

	acme := app.createClient("Acme", "Acme Inc")
	project := app.createProject(acme.ID, "Site Revamp", models.StatusPending)
	detailPath := fmt.Sprintf("/clients/%d", acme.ID)

	r := app.post(detailPath+"/delete", nil)
	if r.code != http.StatusSeeOther || r.location != detailPath {
		t.Fatalf("Expected refusal redirect to %s, got %d %q", detailPath, r.code, r.location)
	}
	page := app.follow(r)
	if !strings.Contains(page.body, "cannot be deleted because they still have associated projects") {
		t.Error("Expected the guarded-delete warning")
	}
	if _, err := app.store.GetClient(ctx, acme.ID); err != nil {
		t.Fatalf("Client must survive a refused delete: %v", err)
	}
	if p, err := app.store.GetProject(ctx, project.ID); err != nil || p.ClientID != acme.ID {
		t.Fatalf("Project must stay linked, got %+v, %v", p, err)
	}

	r = app.post(fmt.Sprintf("/projects/%d/delete", project.ID), nil)
	if r.code != http.StatusSeeOther || r.location != detailPath {
		t.Fatalf("Expected project delete to return to %s, got %d %q", detailPath, r.code, r.location)
	}

	r = app.post(detailPath+"/delete", nil)
	if r.code != http.StatusSeeOther || r.location != "/clients" {
		t.Fatalf("Expected delete redirect to /clients, got %d %q", r.code, r.location)
	}
	if !strings.Contains(app.follow(r).body, "Client deleted successfully.") {
		t.Error("Expected deleted flash")
	}
	if _, err := app.store.GetClient(ctx, acme.ID); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	if r := app.get(detailPath); r.code != http.StatusNotFound {
		t.Errorf("Expected 404 for deleted client, got %d", r.code)
	}
}

func TestClientDetailCountsOpenProjects(t *testing.T) {
	app := newTestApp(t)
	app.signIn("alice")

	acme := app.createClient("Acme", "")
	app.createProject(acme.ID, "One", models.StatusInProgress)
	app.createProject(acme.ID, "Two", models.StatusInProgress)
	app.createProject(acme.ID, "Three", models.StatusCompleted)

	r := app.get(fmt.Sprintf("/clients/%d", acme.ID))
	if !strings.Contains(r.body, `<dd class="col-sm-9" id="open-projects">2</dd>`) {
		t.Errorf("Expected 2 open projects in: %s", r.body)
	}
}

func TestUnknownClientIs404(t *testing.T) {
	app := newTestApp(t)
	app.signIn("alice")

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/clients/999"},
		{http.MethodGet, "/clients/abc"},
		{http.MethodGet, "/clients/999/edit"},
		{http.MethodPost, "/clients/999/edit"},
		{http.MethodPost, "/clients/999/delete"},
	} {
		var r result
		if tc.method == http.MethodGet {
			r = app.get(tc.path)
		} else {
			r = app.post(tc.path, url.Values{"name": {"x"}})
		}
		if r.code != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, r.code)
		}
		if strings.TrimSpace(r.body) != "Client not found" {
			t.Errorf("%s %s: expected plain-text body, got %q", tc.method, tc.path, r.body)
		}
	}
}
