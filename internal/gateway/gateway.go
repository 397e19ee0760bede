// Package gateway implements the remote data gateway the stores delegate
// to: credential auth with JWT sessions, profile updates and file storage.
package gateway

import (
	"context"
	"io"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"

	"github.com/google/uuid"
)

type SignUpParams struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Role     model.Role
}

// Session is what a successful authentication hands back: the profile and
// the bearer token proving it.
type Session struct {
	Profile model.UserProfile
	Token   string
}

type AuthGateway interface {
	SignUp(ctx context.Context, params SignUpParams) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	// CurrentSession verifies a previously issued token. An expired
	// token yields apperrors.ErrTokenExpired.
	CurrentSession(ctx context.Context, token string) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params model.UpdateProfileParams) (*model.UserProfile, error)
}

type FileGateway interface {
	// Upload stores a blob under the given folder and returns its
	// public URL.
	Upload(ctx context.Context, file io.Reader, folder string) (string, error)
	Delete(ctx context.Context, fileURL string) error
}
