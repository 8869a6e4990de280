// Package auth signs users up and in against the local user table and keeps
// the signed-in session across launches.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/sadopc/orgauns/internal/logging"
	"github.com/sadopc/orgauns/internal/store"
)

const (
	sessionKey        = "session_user"
	minPasswordLength = 6
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", minPasswordLength)
)

// Service owns the current session. It is safe for concurrent use.
type Service struct {
	store *store.Store
	log   *logrus.Entry

	mu      sync.Mutex
	current *store.User
	subs    map[chan *store.User]struct{}
}

// New restores a persisted session, if any.
func New(s *store.Store, log *logrus.Entry) *Service {
	svc := &Service{
		store: s,
		log:   logging.Component(log, "auth"),
		subs:  make(map[chan *store.User]struct{}),
	}
	if id, err := s.GetSetting(sessionKey); err == nil && id != "" {
		if u, err := s.GetUser(id); err == nil {
			svc.current = u
		} else {
			s.DeleteSetting(sessionKey)
		}
	}
	return svc
}

func (a *Service) SignUp(ctx context.Context, email, password string) (*store.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if _, err := a.store.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := a.store.CreateUser(email, string(hash))
	if err != nil {
		return nil, err
	}
	a.log.WithField("user", u.ID).Info("user registered")
	return u, a.setCurrent(u)
}

func (a *Service) SignIn(ctx context.Context, email, password string) (*store.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u, err := a.store.GetUserByEmail(email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		a.log.WithField("user", u.ID).Warn("sign in rejected")
		return nil, ErrInvalidCredentials
	}
	a.log.WithField("user", u.ID).Info("signed in")
	return u, a.setCurrent(u)
}

func (a *Service) SignOut() error {
	a.log.Info("signed out")
	return a.setCurrent(nil)
}

// CurrentUser returns the signed-in user.
func (a *Service) CurrentUser() (store.User, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return store.User{}, false
	}
	return *a.current, true
}

// CurrentUserID returns "" when nobody is signed in.
func (a *Service) CurrentUserID() string {
	u, _ := a.CurrentUser()
	return u.ID
}

// Subscribe streams the current user (nil when signed out), starting with the
// present value. The channel closes when ctx is done.
func (a *Service) Subscribe(ctx context.Context) <-chan *store.User {
	ch := make(chan *store.User, 1)

	a.mu.Lock()
	ch <- copyUser(a.current)
	a.subs[ch] = struct{}{}
	a.mu.Unlock()

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		delete(a.subs, ch)
		close(ch)
		a.mu.Unlock()
	}()
	return ch
}

func (a *Service) setCurrent(u *store.User) error {
	var err error
	if u == nil {
		err = a.store.DeleteSetting(sessionKey)
	} else {
		err = a.store.SetSetting(sessionKey, u.ID)
	}
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.current = u
	for ch := range a.subs {
		// Keep only the newest value for slow readers.
		select {
		case <-ch:
		default:
		}
		ch <- copyUser(u)
	}
	return nil
}

func copyUser(u *store.User) *store.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Message turns an auth error into text suitable for the UI.
func Message(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrEmailTaken),
		errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrWeakPassword):
		return capitalize(err.Error())
	case errors.Is(err, store.ErrNotAuthenticated):
		return "Not signed in"
	default:
		return "Authentication failed: " + err.Error()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
