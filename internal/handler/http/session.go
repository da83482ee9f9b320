package httphandler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jgivc/assignfetch/internal/assignment"
	"github.com/jgivc/assignfetch/internal/entity"
)

const (
	sessionKeyRoll = "roll"
)

type cookieLockStore struct {
	store  *sessions.CookieStore
	name   string
	maxAge int
	log    *slog.Logger
}

// NewCookieLockStore keeps the session lock in a signed cookie.
func NewCookieLockStore(secret []byte, name string, maxAge time.Duration, log *slog.Logger) *cookieLockStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &cookieLockStore{
		store:  store,
		name:   name,
		maxAge: int(maxAge.Seconds()),
		log:    log.With(slog.String("item", "CookieLockStore")),
	}
}

// Load never fails: a missing, tampered or stale cookie means no lock.
func (s *cookieLockStore) Load(r *http.Request) entity.SessionLock {
	session, err := s.store.Get(r, s.name)
	if err != nil {
		s.log.Debug("Cannot decode session", slog.Any("error", err))

		return entity.SessionLock{}
	}

	val, ok := session.Values[sessionKeyRoll].(int)
	if !ok {
		return entity.SessionLock{}
	}

	roll := entity.RollNumber(val)
	if err := assignment.Validate(roll); err != nil {
		return entity.SessionLock{}
	}

	return entity.SessionLock{Roll: roll}
}

// Save stores lock together with flashes shown on the next page view.
func (s *cookieLockStore) Save(w http.ResponseWriter, r *http.Request, lock entity.SessionLock, flashes ...string) error {
	// Get returns a fresh session when the old cookie cannot be decoded.
	session, _ := s.store.Get(r, s.name)

	if lock.IsLocked() {
		session.Values[sessionKeyRoll] = int(lock.Roll)
		session.Options.MaxAge = s.maxAge
	} else {
		delete(session.Values, sessionKeyRoll)
		session.Options.MaxAge = -1
	}

	for _, flash := range flashes {
		session.AddFlash(flash)
	}

	return session.Save(r, w)
}

// Flashes pops pending messages. It writes a cookie, so call it before the body.
func (s *cookieLockStore) Flashes(w http.ResponseWriter, r *http.Request) []string {
	session, err := s.store.Get(r, s.name)
	if err != nil {
		return nil
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}

	if err := session.Save(r, w); err != nil {
		s.log.Error("Cannot save session", slog.Any("error", err))
	}

	flashes := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, ok := f.(string); ok {
			flashes = append(flashes, msg)
		}
	}

	return flashes
}
