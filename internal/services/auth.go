package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/anonto42/future-media/backend/internal/apperrors"
	"github.com/anonto42/future-media/backend/internal/auth"
	"github.com/anonto42/future-media/backend/internal/models"
	"github.com/anonto42/future-media/backend/internal/repositories"
	"github.com/anonto42/future-media/backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// IdentityVerifier checks an identity-provider ID token.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (models.FirebaseIdentity, error)
}

// AuthResult is returned by every sign-in path.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService struct {
	repos    *repositories.Repositories
	tokens   *auth.TokenManager
	firebase IdentityVerifier
}

func NewAuthService(repos *repositories.Repositories, tokens *auth.TokenManager, firebase IdentityVerifier) *AuthService {
	return &AuthService{repos: repos, tokens: tokens, firebase: firebase}
}

// Register creates a local account. Duplicate emails or usernames are rejected without
// writing anything.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     req.Username,
		DisplayName:  sanitizeText(req.DisplayName),
		PasswordHash: string(hash),
	}
	if user.DisplayName == "" {
		user.DisplayName = user.Username
	}

	if _, err := s.repos.Users.GetUserByEmail(ctx, user.Email); err == nil {
		return nil, apperrors.BadRequest("email is already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.FromStore(err, "user")
	}
	if err := s.repos.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.BadRequest("email or username is already taken")
		}
		return nil, apperrors.FromStore(err, "user")
	}

	logger.Log.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	return s.issue(user)
}

// SignIn checks email and password. Unknown emails and wrong passwords look the same.
func (s *AuthService) SignIn(ctx context.Context, req models.SignInRequest) (*AuthResult, error) {
	user, err := s.repos.Users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if err != nil {
		return nil, apperrors.FromStore(err, "user")
	}
	if user.PasswordHash == "" {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}
	return s.issue(user)
}

// FirebaseLogin exchanges a Firebase ID token for a local token, creating the user on
// first login or linking an existing account with the same email.
func (s *AuthService) FirebaseLogin(ctx context.Context, idToken string) (*AuthResult, error) {
	if s.firebase == nil {
		return nil, apperrors.BadRequest("firebase login is not enabled")
	}
	identity, err := s.firebase.VerifyIDToken(ctx, idToken)
	if err != nil {
		logger.Log.Warn("firebase token rejected", zap.Error(err))
		return nil, apperrors.Unauthorized("invalid firebase ID token")
	}
	if identity.Email == "" {
		return nil, apperrors.BadRequest("firebase account has no email")
	}
	email := strings.ToLower(identity.Email)

	var user *models.User
	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		existing, err := tx.Users.GetUserByFirebaseUID(ctx, identity.UID)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		existing, err = tx.Users.GetUserByEmail(ctx, email)
		if err == nil {
			if err := tx.Users.UpdateUser(ctx, existing.ID, map[string]interface{}{"firebase_uid": identity.UID}); err != nil {
				return err
			}
			uid := identity.UID
			existing.FirebaseUID = &uid
			user = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		uid := identity.UID
		user = &models.User{
			Email:       email,
			Username:    usernameFromEmail(email),
			DisplayName: sanitizeText(identity.DisplayName),
			FirebaseUID: &uid,
		}
		if user.DisplayName == "" {
			user.DisplayName = user.Username
		}
		return tx.Users.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, apperrors.FromStore(err, "user")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// usernameFromEmail derives an alphanumeric username from the email's local part with a
// random suffix.
func usernameFromEmail(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	var b strings.Builder
	for _, r := range local {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
		if b.Len() == 30 {
			break
		}
	}
	if b.Len() == 0 {
		b.WriteString("user")
	}
	return b.String() + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
