package services

import (
	"log/slog"

	"chatline/auth"
	"chatline/directory"
	"chatline/domain"
	"chatline/errors"
	"chatline/repositories"
)

type LoginResult struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

type IAuthService interface {
	Register(req auth.RegisterRequest) (domain.PublicUser, error)
	Login(req auth.LoginRequest) (LoginResult, error)
	Profile(userID string) (domain.PublicUser, error)
}

// AuthService is the identity provider: it owns credentials and tokens and
// exposes nothing but opaque user ids and verifiable bearer tokens.
type AuthService struct {
	users  repositories.IUserRepository
	index  directory.IUserIndex
	tokens *auth.TokenManager
	log    *slog.Logger
}

func NewAuthService(users repositories.IUserRepository, index directory.IUserIndex,
	tokens *auth.TokenManager, log *slog.Logger) *AuthService {
	return &AuthService{users: users, index: index, tokens: tokens, log: log}
}

func (s *AuthService) Register(req auth.RegisterRequest) (domain.PublicUser, error) {
	if err := auth.ValidateRegister(req); err != nil {
		return domain.PublicUser{}, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.PublicUser{}, err
	}
	user, err := s.users.CreateUser(req.Name, req.Email, hash)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if err := s.index.Index(user.Public()); err != nil {
		// The account exists; a missing directory entry only degrades search.
		s.log.Warn("Indexing new user failed", "user_id", user.ID, "error", err)
	}
	s.log.Info("User registered", "user_id", user.ID)
	return user.Public(), nil
}

func (s *AuthService) Login(req auth.LoginRequest) (LoginResult, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return LoginResult{}, err
	}
	user, err := s.users.GetUserByEmail(req.Email)
	if err != nil {
		return LoginResult{}, err
	}
	ok, err := auth.ComparePassword(req.Password, user.PasswordHash)
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		return LoginResult{}, errors.ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(user.ID, user.Name)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, UserID: user.ID, Username: user.Name}, nil
}

func (s *AuthService) Profile(userID string) (domain.PublicUser, error) {
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}
