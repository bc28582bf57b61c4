package echoweb

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
)

// Session is one operator's server-side state. Toast notices queued on it are
// delivered exactly once: the next page render pops the whole queue.
type Session struct {
	mu sync.Mutex

	ID        string
	ExpiresAt time.Time

	OperatorID int
	IsAdmin    bool

	// MFAPending is set between password and code verification at login.
	MFAPending bool
	// MFAPromptShown tracks the once-per-session MFA enrollment warning.
	MFAPromptShown bool
	// PendingMFASecret holds the not-yet-confirmed secret during enrollment.
	PendingMFASecret string

	notices []core.Notice
}

func (s *Session) Authenticated() bool { return s.OperatorID > 0 && !s.MFAPending }

// PushNotice queues a toast for the next rendered page. Notices that normalize
// to nothing are dropped.
func (s *Session) PushNotice(n *core.Notice) {
	if n == nil {
		return
	}
	if n = core.NormalizeNotice(*n); n == nil {
		return
	}
	s.mu.Lock()
	s.notices = append(s.notices, *n)
	s.mu.Unlock()
}

// PopNotices drains the toast queue; each notice is returned exactly once.
func (s *Session) PopNotices() []core.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	notices := s.notices
	s.notices = nil
	return notices
}

// SessionStore keeps sessions in memory, keyed by an opaque cookie value.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cookieName string
	ttl        time.Duration
}

func NewSessionStore() *SessionStore {
	store := &SessionStore{
		sessions:   make(map[string]*Session),
		cookieName: core.Conf.Session.CookieName,
		ttl:        core.Conf.Session.TTL,
	}
	return store
}

// Open returns the request's session, creating one (and setting the cookie)
// when missing or expired.
func (store *SessionStore) Open(ctx echo.Context) *Session {
	if sess, ok := ctx.Get(contextSessionKey).(*Session); ok {
		return sess
	}

	var sess *Session
	if cookie, err := ctx.Cookie(store.cookieName); err == nil {
		store.mu.RLock()
		if s, ok := store.sessions[cookie.Value]; ok && time.Now().Before(s.ExpiresAt) {
			sess = s
		}
		store.mu.RUnlock()
	}
	if sess == nil {
		sess = store.create(ctx)
	}
	ctx.Set(contextSessionKey, sess)
	return sess
}

func (store *SessionStore) create(ctx echo.Context) *Session {
	sess := &Session{
		ID:        uuid.New().String(),
		ExpiresAt: time.Now().Add(store.ttl),
	}
	store.mu.Lock()
	store.sessions[sess.ID] = sess
	store.mu.Unlock()

	ctx.SetCookie(&http.Cookie{
		Name:     store.cookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	return sess
}

// Renew swaps the session ID after login so a pre-auth cookie cannot be fixed.
func (store *SessionStore) Renew(ctx echo.Context, sess *Session) {
	store.mu.Lock()
	delete(store.sessions, sess.ID)
	sess.ID = uuid.New().String()
	sess.ExpiresAt = time.Now().Add(store.ttl)
	store.sessions[sess.ID] = sess
	store.mu.Unlock()

	ctx.SetCookie(&http.Cookie{
		Name:     store.cookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
}

// Destroy drops the session and clears the cookie.
func (store *SessionStore) Destroy(ctx echo.Context, sess *Session) {
	store.mu.Lock()
	delete(store.sessions, sess.ID)
	store.mu.Unlock()
	ctx.Set(contextSessionKey, nil)

	ctx.SetCookie(&http.Cookie{
		Name:     store.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// GC removes expired sessions; called periodically by the server.
func (store *SessionStore) GC() {
	now := time.Now()
	store.mu.Lock()
	for id, sess := range store.sessions {
		if now.After(sess.ExpiresAt) {
			delete(store.sessions, id)
		}
	}
	store.mu.Unlock()
}
