package apperrors

import "errors"

var (
	ErrEventNotFound      = errors.New("event not found")
	ErrGuestNotFound      = errors.New("guest not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTableFull          = errors.New("table is at capacity")
	ErrInvalidInput       = errors.New("invalid input")
	ErrSnapshotNotFound   = errors.New("snapshot not found")
	ErrSnapshotVersion    = errors.New("snapshot version mismatch")
)
