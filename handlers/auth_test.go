package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestRegisterAndLoginFlow(t *testing.T) {
	app := newTestApp(t)

	r := app.register("alice", "Abc123!@")
	if r.code != http.StatusSeeOther || r.location != "/login" {
		t.Fatalf("Expected redirect to /login, got %d %q: %s", r.code, r.location, r.body)
	}
	page := app.follow(r)
	if !strings.Contains(page.body, "Registration successful") {
		t.Error("Expected the registration flash on the login page")
	}

	r = app.login("alice", "Abc123!@")
	if r.code != http.StatusSeeOther || r.location != "/" {
		t.Fatalf("Expected redirect to /, got %d %q", r.code, r.location)
	}

	dash := app.follow(r)
	if dash.code != http.StatusOK {
		t.Fatalf("Expected dashboard 200, got %d", dash.code)
	}
	if !strings.Contains(dash.body, "alice") {
		t.Error("Expected the username in the navigation")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	app := newTestApp(t)

	if r := app.register("alice", "Abc123!@"); r.code != http.StatusSeeOther {
		t.Fatalf("First registration failed with %d", r.code)
	}

	r := app.register("alice", "Xyz789#$")
	if r.code != http.StatusOK {
		t.Fatalf("Expected form redisplay (200), got %d", r.code)
	}
	if !strings.Contains(r.body, "Username already taken.") {
		t.Errorf("Expected duplicate username message, got: %s", r.body)
	}

	user, err := app.store.GetUserByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	taken, err := app.store.UsernameTaken(context.Background(), "alice", user.ID)
	if err != nil {
		t.Fatalf("UsernameTaken: %v", err)
	}
	if taken {
		t.Error("Expected exactly one alice row")
	}

	// The original password still works
	if r := app.login("alice", "Abc123!@"); r.code != http.StatusSeeOther {
		t.Errorf("Expected original credentials to log in, got %d", r.code)
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name   string
		values url.Values
		want   string
	}{
		{"short username", url.Values{"username": {"al"}, "password": {"Abc123!@"}, "confirmation": {"Abc123!@"}}, "Username must have 3 to 30 characters."},
		{"space in username", url.Values{"username": {"al ice"}, "password": {"Abc123!@"}, "confirmation": {"Abc123!@"}}, "Username must not contain spaces."},
		{"mismatch", url.Values{"username": {"alice"}, "password": {"Abc123!@"}, "confirmation": {"Abc123!#"}}, "Passwords must match."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := app.post("/register", tc.values)
			if r.code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", r.code)
			}
			if !strings.Contains(r.body, tc.want) {
				t.Errorf("Expected %q in body", tc.want)
			}
		})
	}

	if _, err := app.store.GetUserByUsername(context.Background(), "alice"); err == nil {
		t.Error("No user should have been created")
	}
}

func TestRegisterShowsEveryPasswordProblem(t *testing.T) {
	app := newTestApp(t)

	r := app.register("alice", "Ab1")
	if r.code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", r.code)
	}
	for _, want := range []string{
		"Password must have 6 to 8 characters.",
		"Password must contain at least one uppercase letter",
	} {
		if !strings.Contains(r.body, want) {
			t.Errorf("Expected %q in body", want)
		}
	}
}

func TestLoginErrorsAreGeneric(t *testing.T) {
	app := newTestApp(t)
	app.register("alice", "Abc123!@")

	wrongPassword := app.login("alice", "Wrong1!x")
	unknownUser := app.login("mallory", "Abc123!@")

	for name, r := range map[string]result{"wrong password": wrongPassword, "unknown user": unknownUser} {
		if r.code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", name, r.code)
		}
		if !strings.Contains(r.body, "Invalid username or password.") {
			t.Errorf("%s: expected generic error", name)
		}
	}

	if r := app.get("/"); r.code != http.StatusSeeOther {
		t.Error("Failed logins must not populate the session")
	}
}

func TestLoginRequiresFields(t *testing.T) {
	app := newTestApp(t)
	r := app.login("", "")
	if r.code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", r.code)
	}
	if !strings.Contains(r.body, "Missing username.") || !strings.Contains(r.body, "Missing password.") {
		t.Errorf("Expected required-field errors, got: %s", r.body)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	app.signIn("alice")

	if r := app.get("/"); r.code != http.StatusOK {
		t.Fatalf("Expected dashboard before logout, got %d", r.code)
	}

	r := app.get("/logout")
	if r.code != http.StatusSeeOther || r.location != "/login" {
		t.Fatalf("Expected redirect to /login, got %d %q", r.code, r.location)
	}
	if r := app.get("/"); r.code != http.StatusSeeOther {
		t.Errorf("Expected redirect after logout, got %d", r.code)
	}
}

func TestLoginPageClearsSession(t *testing.T) {
	app := newTestApp(t)
	app.signIn("alice")

	if r := app.get("/login"); r.code != http.StatusOK {
		t.Fatalf("Expected login page, got %d", r.code)
	}
	if r := app.get("/"); r.code != http.StatusSeeOther {
		t.Errorf("Visiting /login should end the session, got %d", r.code)
	}
}
