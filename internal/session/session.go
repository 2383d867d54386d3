package session

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const sessionName = "newsbreeze-session"

func init() {
	// Session values are gob-encoded into the cookie.
	gob.Register([]string{})
}

// Preferences is the per-browser-session state: the selected voice and
// which configured sources to include on refresh. Nothing here
// survives the cookie.
type Preferences struct {
	Voice   string   `json:"voice"`
	Sources []string `json:"sources"`
}

type Store struct {
	store *sessions.CookieStore
}

func NewStore(secret string) *Store {
	return &Store{store: sessions.NewCookieStore([]byte(secret))}
}

func (s *Store) Get(r *http.Request) Preferences {
	session, _ := s.store.Get(r, sessionName)

	prefs := Preferences{}
	if v, ok := session.Values["voice"].(string); ok {
		prefs.Voice = v
	}
	if srcs, ok := session.Values["sources"].([]string); ok {
		prefs.Sources = srcs
	}
	return prefs
}

func (s *Store) Save(w http.ResponseWriter, r *http.Request, prefs Preferences) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values["voice"] = prefs.Voice
	session.Values["sources"] = prefs.Sources
	return session.Save(r, w)
}
