package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/itaybe6/Events-Mannagement-sub003/internal/model"
	"github.com/itaybe6/Events-Mannagement-sub003/internal/repository"
	apperrors "github.com/itaybe6/Events-Mannagement-sub003/pkg/app_errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const revokedKeyPrefix = "auth:revoked:"

// JWTAuthGateway authenticates against the users table and issues signed
// bearer tokens. Revoked tokens are tracked in redis until they expire on
// their own; with a nil redis client sign-out is local-only.
type JWTAuthGateway struct {
	users    repository.UserRepository
	rdb      *redis.Client
	secret   []byte
	tokenTTL time.Duration
	log      *zap.Logger
}

func NewJWTAuthGateway(users repository.UserRepository, rdb *redis.Client, secret string, tokenTTL time.Duration, log *zap.Logger) *JWTAuthGateway {
	return &JWTAuthGateway{
		users:    users,
		rdb:      rdb,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		log:      log,
	}
}

func (g *JWTAuthGateway) SignUp(ctx context.Context, params SignUpParams) (*Session, error) {
	role := params.Role
	if role == "" {
		role = model.RoleCouple
	}
	if !role.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := g.users.Create(ctx, &model.User{
		Email:    params.Email,
		PassHash: passHash,
		FullName: params.FullName,
		Phone:    params.Phone,
		Role:     role,
	})
	if err != nil {
		return nil, err
	}

	g.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("role", string(user.Role)))
	return g.newSession(user)
}

func (g *JWTAuthGateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return g.newSession(user)
}

func (g *JWTAuthGateway) SignOut(ctx context.Context, token string) error {
	if g.rdb == nil {
		return nil
	}
	claims, err := g.parseToken(token)
	if err != nil {
		// Already invalid; nothing to revoke.
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return g.rdb.Set(ctx, revokedKeyPrefix+token, "1", ttl).Err()
}

func (g *JWTAuthGateway) CurrentSession(ctx context.Context, token string) (*model.UserProfile, error) {
	claims, err := g.parseToken(token)
	if err != nil {
		return nil, err
	}

	if g.rdb != nil {
		revoked, err := g.rdb.Exists(ctx, revokedKeyPrefix+token).Result()
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked > 0 {
			return nil, apperrors.ErrTokenExpired
		}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

func (g *JWTAuthGateway) UpdateProfile(ctx context.Context, userID uuid.UUID, params model.UpdateProfileParams) (*model.UserProfile, error) {
	user, err := g.users.UpdateProfile(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	profile := user.Profile()
	return &profile, nil
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (g *JWTAuthGateway) newSession(user *model.User) (*Session, error) {
	now := time.Now()
	claims := sessionClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Session{Profile: user.Profile(), Token: token}, nil
}

func (g *JWTAuthGateway) parseToken(token string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidCredentials
	}
	return claims, nil
}
