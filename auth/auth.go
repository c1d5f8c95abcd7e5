package auth

import (
	"context"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/sessions"

	"studioflow/config"
	"studioflow/models"
)

var Store *sessions.FilesystemStore

const SessionName = "studioflow-session"

const (
	keyUserID   = "user_id"
	keyUsername = "username"
)

func init() {
	gob.Register(models.Flash{})
}

// InitStore prepares the server-side session store under dir. Only a signed,
// encrypted session id travels in the cookie.
func InitStore(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	// Derive two 32-byte keys from the session key
	authKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "auth"))
	encKey := sha256.Sum256([]byte(config.AppConfig.SessionKey + "encryption"))

	Store = sessions.NewFilesystemStore(dir, authKey[:], encKey[:])
	Store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   config.AppConfig.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return nil
}

// CurrentUser is the authenticated identity carried through a request.
type CurrentUser struct {
	ID       int
	Username string
}

type contextKey struct{}

func WithUser(ctx context.Context, u *CurrentUser) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns the user placed by the login middleware, or nil.
func UserFromContext(ctx context.Context) *CurrentUser {
	u, _ := ctx.Value(contextKey{}).(*CurrentUser)
	return u
}

// GetCurrentUser reads the user out of the session cookie.
func GetCurrentUser(r *http.Request) (*CurrentUser, bool) {
	session, _ := Store.Get(r, SessionName)
	id, ok := session.Values[keyUserID].(int)
	if !ok || id == 0 {
		return nil, false
	}
	username, _ := session.Values[keyUsername].(string)
	return &CurrentUser{ID: id, Username: username}, true
}

// SetSession drops every existing value, issues a fresh session id and stores the user.
// The file behind the old id is erased first.
func SetSession(w http.ResponseWriter, r *http.Request, userID int, username string) error {
	session, _ := Store.Get(r, SessionName)
	if !session.IsNew && session.ID != "" {
		session.Options.MaxAge = -1
		if err := session.Save(r, w); err != nil {
			return fmt.Errorf("erase old session: %w", err)
		}
	}
	for k := range session.Values {
		delete(session.Values, k)
	}
	session.ID = ""
	session.Options.MaxAge = Store.Options.MaxAge
	session.Values[keyUserID] = userID
	session.Values[keyUsername] = username
	return session.Save(r, w)
}

// SetUsername refreshes the cached username after a profile change.
func SetUsername(w http.ResponseWriter, r *http.Request, username string) error {
	session, _ := Store.Get(r, SessionName)
	session.Values[keyUsername] = username
	return session.Save(r, w)
}

func ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := Store.Get(r, SessionName)
	for k := range session.Values {
		delete(session.Values, k)
	}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// AddFlash queues a message shown on the next rendered page.
func AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	session, _ := Store.Get(r, SessionName)
	session.AddFlash(models.Flash{Category: category, Message: message})
	return session.Save(r, w)
}

// Flashes pops every queued message.
func Flashes(w http.ResponseWriter, r *http.Request) []models.Flash {
	session, _ := Store.Get(r, SessionName)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	flashes := make([]models.Flash, 0, len(raw))
	for _, f := range raw {
		if flash, ok := f.(models.Flash); ok {
			flashes = append(flashes, flash)
		}
	}
	session.Save(r, w)
	return flashes
}
