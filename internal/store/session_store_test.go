package store

import (
	"context"
	"testing"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/gateway"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAuthGateway lets each test script the gateway's behavior per call.
type fakeAuthGateway struct {
	signUpFn         func(ctx context.Context, params gateway.SignUpParams) (*gateway.Session, error)
	signInFn         func(ctx context.Context, email, password string) (*gateway.Session, error)
	signOutFn        func(ctx context.Context, token string) error
	currentSessionFn func(ctx context.Context, token string) (*model.UserProfile, error)
	updateProfileFn  func(ctx context.Context, userID uuid.UUID, params model.UpdateProfileParams) (*model.UserProfile, error)
}

func (f *fakeAuthGateway) SignUp(ctx context.Context, params gateway.SignUpParams) (*gateway.Session, error) {
	return f.signUpFn(ctx, params)
}

func (f *fakeAuthGateway) SignIn(ctx context.Context, email, password string) (*gateway.Session, error) {
	return f.signInFn(ctx, email, password)
}

func (f *fakeAuthGateway) SignOut(ctx context.Context, token string) error {
	return f.signOutFn(ctx, token)
}

func (f *fakeAuthGateway) CurrentSession(ctx context.Context, token string) (*model.UserProfile, error) {
	return f.currentSessionFn(ctx, token)
}

func (f *fakeAuthGateway) UpdateProfile(ctx context.Context, userID uuid.UUID, params model.UpdateProfileParams) (*model.UserProfile, error) {
	return f.updateProfileFn(ctx, userID, params)
}

func testProfile() model.UserProfile {
	return model.UserProfile{
		ID:       uuid.New(),
		Email:    "dana@example.com",
		FullName: "דנה כהן",
		Role:     model.RoleCouple,
	}
}

func newSessionStore(t *testing.T, auth gateway.AuthGateway) (*SessionStore, SnapshotStore) {
	t.Helper()
	snapshots := NewFileSnapshotStore(t.TempDir())
	return NewSessionStore(auth, snapshots, zap.NewNop()), snapshots
}

func TestSessionStore_SignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("success installs and persists the session", func(t *testing.T) {
		profile := testProfile()
		auth := &fakeAuthGateway{
			signInFn: func(ctx context.Context, email, password string) (*gateway.Session, error) {
				return &gateway.Session{Profile: profile, Token: "tok-1"}, nil
			},
		}
		s, snapshots := newSessionStore(t, auth)

		got, err := s.SignIn(ctx, profile.Email, "secret")
		require.NoError(t, err)
		assert.Equal(t, profile.ID, got.ID)

		state := s.State()
		assert.True(t, state.IsLoggedIn)
		assert.Equal(t, model.RoleCouple, state.Role)
		assert.Equal(t, "tok-1", state.Token)
		assert.False(t, state.Loading)

		var persisted SessionState
		require.NoError(t, snapshots.Load(ctx, sessionSlot, &persisted))
		assert.True(t, persisted.IsLoggedIn)
		assert.Equal(t, "tok-1", persisted.Token)
	})

	t.Run("failure propagates and leaves the store logged out", func(t *testing.T) {
		auth := &fakeAuthGateway{
			signInFn: func(ctx context.Context, email, password string) (*gateway.Session, error) {
				return nil, apperrors.ErrInvalidCredentials
			},
		}
		s, _ := newSessionStore(t, auth)

		_, err := s.SignIn(ctx, "dana@example.com", "wrong")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

		state := s.State()
		assert.False(t, state.IsLoggedIn)
		assert.False(t, state.Loading)
	})
}

func TestSessionStore_SignUp(t *testing.T) {
	profile := testProfile()
	auth := &fakeAuthGateway{
		signUpFn: func(ctx context.Context, params gateway.SignUpParams) (*gateway.Session, error) {
			return &gateway.Session{Profile: profile, Token: "tok-new"}, nil
		},
	}
	s, _ := newSessionStore(t, auth)

	got, err := s.SignUp(context.Background(), gateway.SignUpParams{Email: profile.Email, Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)
	assert.True(t, s.State().IsLoggedIn)
}

func TestSessionStore_LogoutClearsStateDespiteGatewayFailure(t *testing.T) {
	ctx := context.Background()
	profile := testProfile()
	auth := &fakeAuthGateway{
		signInFn: func(ctx context.Context, email, password string) (*gateway.Session, error) {
			return &gateway.Session{Profile: profile, Token: "tok-1"}, nil
		},
		signOutFn: func(ctx context.Context, token string) error {
			return assert.AnError
		},
	}
	s, snapshots := newSessionStore(t, auth)

	_, err := s.SignIn(ctx, profile.Email, "secret")
	require.NoError(t, err)

	s.Logout(ctx)

	state := s.State()
	assert.False(t, state.IsLoggedIn)
	assert.Empty(t, state.Token)
	assert.Nil(t, state.UserData)

	var persisted SessionState
	require.NoError(t, snapshots.Load(ctx, sessionSlot, &persisted))
	assert.False(t, persisted.IsLoggedIn)
}

func TestSessionStore_InitializeAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("no snapshot resolves to logged out with nil error", func(t *testing.T) {
		auth := &fakeAuthGateway{}
		s, _ := newSessionStore(t, auth)

		require.NoError(t, s.InitializeAuth(ctx))
		assert.False(t, s.State().IsLoggedIn)
	})

	t.Run("expired token resolves to logged out with nil error", func(t *testing.T) {
		auth := &fakeAuthGateway{
			currentSessionFn: func(ctx context.Context, token string) (*model.UserProfile, error) {
				return nil, apperrors.ErrTokenExpired
			},
		}
		snapshots := NewFileSnapshotStore(t.TempDir())
		require.NoError(t, snapshots.Save(ctx, sessionSlot, &SessionState{
			IsLoggedIn: true,
			Token:      "expired-token",
		}))
		s := NewSessionStore(auth, snapshots, zap.NewNop())

		require.NoError(t, s.InitializeAuth(ctx))
		state := s.State()
		assert.False(t, state.IsLoggedIn)
		assert.Empty(t, state.Token)
	})

	t.Run("valid token restores the session", func(t *testing.T) {
		profile := testProfile()
		auth := &fakeAuthGateway{
			currentSessionFn: func(ctx context.Context, token string) (*model.UserProfile, error) {
				require.Equal(t, "tok-valid", token)
				return &profile, nil
			},
		}
		snapshots := NewFileSnapshotStore(t.TempDir())
		require.NoError(t, snapshots.Save(ctx, sessionSlot, &SessionState{
			IsLoggedIn: true,
			Token:      "tok-valid",
		}))
		s := NewSessionStore(auth, snapshots, zap.NewNop())

		require.NoError(t, s.InitializeAuth(ctx))
		state := s.State()
		assert.True(t, state.IsLoggedIn)
		assert.Equal(t, model.RoleCouple, state.Role)
		require.NotNil(t, state.UserData)
		assert.Equal(t, profile.ID, state.UserData.ID)
	})
}

func TestSessionStore_UpdateUserData(t *testing.T) {
	ctx := context.Background()
	profile := testProfile()

	t.Run("merges only after the gateway succeeds", func(t *testing.T) {
		updated := profile
		updated.FullName = "דנה לוי"
		auth := &fakeAuthGateway{
			signInFn: func(ctx context.Context, email, password string) (*gateway.Session, error) {
				return &gateway.Session{Profile: profile, Token: "tok-1"}, nil
			},
			updateProfileFn: func(ctx context.Context, userID uuid.UUID, params model.UpdateProfileParams) (*model.UserProfile, error) {
				require.Equal(t, profile.ID, userID)
				return &updated, nil
			},
		}
		s, _ := newSessionStore(t, auth)
		_, err := s.SignIn(ctx, profile.Email, "secret")
		require.NoError(t, err)

		name := "דנה לוי"
		got, err := s.UpdateUserData(ctx, model.UpdateProfileParams{FullName: &name})
		require.NoError(t, err)
		assert.Equal(t, "דנה לוי", got.FullName)
		assert.Equal(t, "דנה לוי", s.State().UserData.FullName)
	})

	t.Run("gateway failure leaves local state untouched", func(t *testing.T) {
		auth := &fakeAuthGateway{
			signInFn: func(ctx context.Context, email, password string) (*gateway.Session, error) {
				return &gateway.Session{Profile: profile, Token: "tok-1"}, nil
			},
			updateProfileFn: func(ctx context.Context, userID uuid.UUID, params model.UpdateProfileParams) (*model.UserProfile, error) {
				return nil, assert.AnError
			},
		}
		s, _ := newSessionStore(t, auth)
		_, err := s.SignIn(ctx, profile.Email, "secret")
		require.NoError(t, err)

		name := "whatever"
		_, err = s.UpdateUserData(ctx, model.UpdateProfileParams{FullName: &name})
		require.Error(t, err)
		assert.Equal(t, profile.FullName, s.State().UserData.FullName)
	})

	t.Run("no-op when logged out", func(t *testing.T) {
		s, _ := newSessionStore(t, &fakeAuthGateway{})
		name := "whatever"
		got, err := s.UpdateUserData(ctx, model.UpdateProfileParams{FullName: &name})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestSessionStore_SubscribeSeesTransitions(t *testing.T) {
	ctx := context.Background()
	profile := testProfile()
	auth := &fakeAuthGateway{
		signInFn: func(ctx context.Context, email, password string) (*gateway.Session, error) {
			return &gateway.Session{Profile: profile, Token: "tok-1"}, nil
		},
		signOutFn: func(ctx context.Context, token string) error { return nil },
	}
	s, _ := newSessionStore(t, auth)

	updates, cancel := s.Subscribe()
	defer cancel()

	_, err := s.SignIn(ctx, profile.Email, "secret")
	require.NoError(t, err)
	s.Logout(ctx)

	var states []SessionState
	for len(updates) > 0 {
		states = append(states, <-updates)
	}
	require.NotEmpty(t, states)

	sawLogin := false
	for _, st := range states {
		if st.IsLoggedIn {
			sawLogin = true
		}
	}
	assert.True(t, sawLogin)
	assert.False(t, states[len(states)-1].IsLoggedIn)
}
