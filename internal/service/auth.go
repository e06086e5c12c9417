package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/audit"
	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"
	"furniro_back_end/internal/utils"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OAuthProfile est l'identité renvoyée par Google.
type OAuthProfile struct {
	GoogleID string
	Email    string
	Name     string
	Avatar   string
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService struct {
	users  repository.UserRepository
	tokens *utils.TokenIssuer
	roles  *cache.UserCache
	audit  audit.Logger
}

// NewAuthService construit le service; roles peut être nil (pas de Redis).
func NewAuthService(users repository.UserRepository, tokens *utils.TokenIssuer, roles *cache.UserCache, auditLog audit.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, roles: roles, audit: auditLog}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("All fields (name, email, password) are required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Validation("Email is already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Server(err)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Server(err)
	}

	// Le rôle n'est jamais pris dans la requête.
	user := &models.User{
		Name:         name,
		Email:        email,
		Password:     hash,
		Role:         models.RoleUser,
		AuthProvider: models.ProviderLocal,
	}
	err = s.users.Create(ctx, user)
	audit.Record(ctx, s.audit, models.ActionRegister, models.ResourceUser, user.ID.Hex(), map[string]string{"email": email}, err)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Validation("Email is already registered")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	log.Printf("✅ Nouvel utilisateur inscrit: %s", email)
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		audit.Record(ctx, s.audit, models.ActionLogin, models.ResourceUser, "", map[string]string{"email": email}, err)
		return nil, apperr.Auth("Invalid credentials")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	// Un compte Google sans mot de passe ne peut pas se connecter localement.
	if user.Password == "" {
		return nil, apperr.Auth("Invalid credentials")
	}
	ok, err := utils.VerifyPassword(in.Password, user.Password)
	if err != nil {
		log.Printf("⚠️ Hash illisible pour %s: %v", email, err)
	}
	if !ok {
		audit.Record(ctx, s.audit, models.ActionLogin, models.ResourceUser, user.ID.Hex(), map[string]string{"email": email}, apperr.Auth("Invalid credentials"))
		return nil, apperr.Auth("Invalid credentials")
	}

	audit.Record(ctx, s.audit, models.ActionLogin, models.ResourceUser, user.ID.Hex(), nil, nil)
	return s.issue(user)
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	id, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	return user, nil
}

// OAuthLogin retrouve l'utilisateur par googleId, puis par email (le compte est
// alors lié à Google), sinon crée un compte Google.
func (s *AuthService) OAuthLogin(ctx context.Context, p OAuthProfile) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(p.Email))
	if p.GoogleID == "" || email == "" {
		return nil, apperr.Auth("Google authentication failed")
	}

	user, err := s.users.FindByGoogleID(ctx, p.GoogleID)
	if err == nil {
		return s.issue(user)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Server(err)
	}

	user, err = s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.users.LinkGoogle(ctx, user.ID, p.GoogleID, p.Avatar); err != nil {
			return nil, apperr.Server(err)
		}
		user.GoogleID = p.GoogleID
		user.AuthProvider = models.ProviderGoogle
		if p.Avatar != "" {
			user.Avatar = p.Avatar
		}
		log.Printf("✅ Compte %s lié à Google", email)
	case errors.Is(err, repository.ErrNotFound):
		name := p.Name
		if name == "" {
			name = email
		}
		user = &models.User{
			Name:         name,
			Email:        email,
			GoogleID:     p.GoogleID,
			Avatar:       p.Avatar,
			Role:         models.RoleUser,
			AuthProvider: models.ProviderGoogle,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, apperr.Server(err)
		}
		log.Printf("✅ Nouvel utilisateur Google: %s", email)
	default:
		return nil, apperr.Server(err)
	}

	audit.Record(ctx, s.audit, models.ActionOAuthLogin, models.ResourceUser, user.ID.Hex(), nil, nil)
	return s.issue(user)
}

// Role lit le rôle via le cache Redis, puis MongoDB.
func (s *AuthService) Role(ctx context.Context, userID string) (string, error) {
	if s.roles != nil {
		role, err := s.roles.GetRole(ctx, userID)
		if err == nil {
			return role, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("⚠️ Cache des rôles indisponible: %v", err)
		}
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return "", err
	}
	if s.roles != nil {
		if err := s.roles.SetRole(ctx, userID, user.Role); err != nil {
			log.Printf("⚠️ Mise en cache du rôle impossible: %v", err)
		}
	}
	return user.Role, nil
}

// SetRole change le rôle d'un utilisateur et invalide le cache pour RequireAdmin.
func (s *AuthService) SetRole(ctx context.Context, userID, role string) (*models.User, error) {
	id, err := parseID(userID, "User ID is required", "Invalid user ID format")
	if err != nil {
		return nil, err
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return nil, apperr.Validation("Invalid role")
	}

	err = s.users.UpdateRole(ctx, id, role)
	audit.Record(ctx, s.audit, models.ActionRoleUpdate, models.ResourceUser, userID, map[string]string{"role": role}, err)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	if s.roles != nil {
		if err := s.roles.Invalidate(ctx, userID); err != nil {
			log.Printf("⚠️ Invalidation du rôle en cache impossible: %v", err)
		}
	}
	log.Printf("✅ Rôle de %s changé en %s", userID, role)
	return s.Profile(ctx, userID)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateJWT(*user)
	if err != nil {
		return nil, apperr.Server(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
