// Package identity issues and verifies bearer tokens for storefront accounts.
//
// The Gateway interface is what the rest of the application consumes; Local is
// the in-process implementation backed by the accounts and revoked_tokens
// tables, bcrypt password hashes and HS256 JWTs.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"example.com/storefront/internal/model"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const (
	tokenTypeAccess = "access"
	DefaultTTL      = 24 * time.Hour
)

// Identity is the caller resolved from a bearer token.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        Identity  `json:"user"`
}

type Gateway interface {
	SignUp(ctx context.Context, email, password, fullName string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context, token string) error
	VerifyToken(ctx context.Context, token string) (Identity, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type claims struct {
	Email string `json:"email"`
	Type  string `json:"typ"`
	jwt.RegisteredClaims
}

type Local struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

var _ Gateway = (*Local)(nil)

func NewLocal(db *gorm.DB, secret []byte, ttl time.Duration) *Local {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Local{db: db, secret: secret, ttl: ttl, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (l *Local) SignUp(ctx context.Context, email, password, fullName string) (Identity, error) {
	email = normalizeEmail(email)
	var n int64
	if err := l.db.WithContext(ctx).Model(&model.Account{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return Identity{}, err
	}
	if n > 0 {
		return Identity{}, ErrEmailExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}
	acc := model.Account{Email: email, PasswordHash: string(hash), FullName: fullName}
	if err := l.db.WithContext(ctx).Create(&acc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Identity{}, ErrEmailExists
		}
		return Identity{}, err
	}
	return Identity{ID: acc.ID, Email: acc.Email}, nil
}

func (l *Local) SignIn(ctx context.Context, email, password string) (Session, error) {
	var acc model.Account
	err := l.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	user := Identity{ID: acc.ID, Email: acc.Email}
	now := l.now()
	exp := now.Add(l.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: acc.Email,
		Type:  tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   acc.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := t.SignedString(l.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{AccessToken: signed, TokenType: "Bearer", ExpiresAt: exp, User: user}, nil
}

func (l *Local) parse(token string) (*claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return l.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(l.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Type != tokenTypeAccess || c.ID == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}

func (l *Local) VerifyToken(ctx context.Context, token string) (Identity, error) {
	c, err := l.parse(token)
	if err != nil {
		return Identity{}, err
	}
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	var revoked int64
	if err := l.db.WithContext(ctx).Model(&model.RevokedToken{}).Where("jti = ?", c.ID).Count(&revoked).Error; err != nil {
		return Identity{}, err
	}
	if revoked > 0 {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: id, Email: c.Email}, nil
}

// SignOut revokes the token's id until the token would have expired anyway.
func (l *Local) SignOut(ctx context.Context, token string) error {
	c, err := l.parse(token)
	if err != nil {
		return err
	}
	id, _ := uuid.Parse(c.Subject)
	rt := model.RevokedToken{JTI: c.ID, AccountID: id, ExpiresAt: c.ExpiresAt.Time}
	db := l.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rt).Error; err != nil {
		return err
	}
	// expired entries can no longer match a valid token
	return db.Where("expires_at < ?", l.now()).Delete(&model.RevokedToken{}).Error
}

func (l *Local) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return l.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Account{}).Error
}
