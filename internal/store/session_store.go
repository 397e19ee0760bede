package store

import (
	"context"
	"sync"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/gateway"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"

	"go.uber.org/zap"
)

const sessionSlot = "session"

// SessionState is the persisted auth snapshot. Loading is transient and
// never persisted.
type SessionState struct {
	IsLoggedIn bool               `json:"is_logged_in"`
	Role       model.Role         `json:"role,omitempty"`
	UserData   *model.UserProfile `json:"user_data,omitempty"`
	Token      string             `json:"token,omitempty"`
	Loading    bool               `json:"-"`
}

// SessionStore tracks whether a user is authenticated and who they are,
// delegating all credential checks to the auth gateway. Sign-in and
// sign-up failures propagate to the caller; every other gateway failure
// collapses to a clean logged-out state so the app is never stuck
// authenticated-but-unverified.
type SessionStore struct {
	mu        sync.Mutex
	auth      gateway.AuthGateway
	snapshots SnapshotStore
	log       *zap.Logger
	state     SessionState

	subs    map[int]chan SessionState
	nextSub int
}

func NewSessionStore(auth gateway.AuthGateway, snapshots SnapshotStore, log *zap.Logger) *SessionStore {
	return &SessionStore{
		auth:      auth,
		snapshots: snapshots,
		log:       log,
		subs:      make(map[int]chan SessionState),
	}
}

// State returns a copy of the current session state.
func (s *SessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe returns a stream of session-state changes and a function that
// tears the subscription down. Slow consumers miss updates rather than
// blocking mutations.
func (s *SessionStore) Subscribe() (<-chan SessionState, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan SessionState, 8)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ch, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// notify must be called with the mutex held.
func (s *SessionStore) notify() {
	for _, ch := range s.subs {
		select {
		case ch <- s.state:
		default:
		}
	}
}

// persist must be called with the mutex held. Persistence failures are
// logged but never fail an auth transition.
func (s *SessionStore) persist(ctx context.Context) {
	if err := s.snapshots.Save(ctx, sessionSlot, &s.state); err != nil {
		s.log.Error("session snapshot save failed", zap.Error(err))
	}
}

func (s *SessionStore) setLoading(loading bool) {
	s.mu.Lock()
	s.state.Loading = loading
	s.notify()
	s.mu.Unlock()
}

// SignUp registers through the gateway. On failure the loading flag is
// cleared and the error is returned so the caller can show it.
func (s *SessionStore) SignUp(ctx context.Context, params gateway.SignUpParams) (*model.UserProfile, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	session, err := s.auth.SignUp(ctx, params)
	if err != nil {
		s.log.Warn("sign up failed", zap.Error(err))
		return nil, err
	}
	s.setSession(ctx, session)
	return &session.Profile, nil
}

// SignIn authenticates through the gateway; same error contract as SignUp.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) (*model.UserProfile, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	session, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		s.log.Warn("sign in failed", zap.Error(err))
		return nil, err
	}
	s.setSession(ctx, session)
	return &session.Profile, nil
}

// Login installs a session the gateway already authenticated out-of-band.
func (s *SessionStore) Login(ctx context.Context, profile model.UserProfile, token string) {
	s.setSession(ctx, &gateway.Session{Profile: profile, Token: token})
}

func (s *SessionStore) setSession(ctx context.Context, session *gateway.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := session.Profile
	s.state.IsLoggedIn = true
	s.state.Role = profile.Role
	s.state.UserData = &profile
	s.state.Token = session.Token
	s.persist(ctx)
	s.notify()
}

// Logout signs out remotely and always clears local state, even when the
// gateway call fails; staying locally authenticated after a failed remote
// sign-out would strand the user.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.state.Token
	s.mu.Unlock()

	if token != "" {
		if err := s.auth.SignOut(ctx, token); err != nil {
			s.log.Warn("remote sign out failed, clearing local session anyway", zap.Error(err))
		}
	}
	s.ResetAuth(ctx)
}

// ResetAuth hard-resets local auth state. Used on unrecoverable auth
// errors.
func (s *SessionStore) ResetAuth(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = SessionState{}
	s.persist(ctx)
	s.notify()
}

// UpdateUserData pushes a profile update to the gateway and merges it
// locally only after the remote call succeeds.
func (s *SessionStore) UpdateUserData(ctx context.Context, params model.UpdateProfileParams) (*model.UserProfile, error) {
	s.mu.Lock()
	user := s.state.UserData
	s.mu.Unlock()
	if user == nil {
		return nil, nil
	}

	profile, err := s.auth.UpdateProfile(ctx, user.ID, params)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.UserData = profile
	s.state.Role = profile.Role
	s.persist(ctx)
	s.notify()
	return profile, nil
}

// InitializeAuth restores the persisted session on startup and verifies
// it with the gateway. Any failure, including an expired token, resolves
// to a clean logged-out state and a nil error.
func (s *SessionStore) InitializeAuth(ctx context.Context) error {
	s.mu.Lock()
	var loaded SessionState
	if err := s.snapshots.Load(ctx, sessionSlot, &loaded); err == nil {
		s.state = loaded
		s.state.Loading = false
	}
	token := s.state.Token
	s.mu.Unlock()

	if token == "" {
		s.ResetAuth(ctx)
		return nil
	}

	profile, err := s.auth.CurrentSession(ctx, token)
	if err != nil {
		s.log.Info("stored session rejected, starting logged out", zap.Error(err))
		s.ResetAuth(ctx)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoggedIn = true
	s.state.Role = profile.Role
	s.state.UserData = profile
	s.persist(ctx)
	s.notify()
	return nil
}
