package services

import (
	"context"
	"log/slog"
	"strings"

	"chatline/directory"
	"chatline/domain"
	"chatline/errors"
	"chatline/repositories"

	"github.com/samber/lo"
)

const searchLimit = 50

type IUserService interface {
	ListUsers() ([]domain.PublicUser, error)
	GetUser(id string) (domain.PublicUser, error)
	GetUserByEmail(email string) (domain.PublicUser, error)
	SearchUsers(ctx context.Context, query string) ([]domain.PublicUser, error)
	UpdateProfile(userID, name, email string) (domain.PublicUser, error)
}

type UserService struct {
	users repositories.IUserRepository
	index directory.IUserIndex
	log   *slog.Logger
}

func NewUserService(users repositories.IUserRepository, index directory.IUserIndex,
	log *slog.Logger) *UserService {
	return &UserService{users: users, index: index, log: log}
}

func (s *UserService) ListUsers() ([]domain.PublicUser, error) {
	users, err := s.users.ListUsers()
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u domain.User, _ int) domain.PublicUser {
		return u.Public()
	}), nil
}

func (s *UserService) GetUser(id string) (domain.PublicUser, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *UserService) GetUserByEmail(email string) (domain.PublicUser, error) {
	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}

// SearchUsers matches the query as a case-insensitive substring of name or
// email. An empty query falls back to the full listing.
func (s *UserService) SearchUsers(ctx context.Context, query string) ([]domain.PublicUser, error) {
	if strings.TrimSpace(query) == "" {
		return s.ListUsers()
	}
	ids, err := s.index.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}

	results := make([]domain.PublicUser, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.GetUserByID(id)
		if err != nil {
			// A stale index entry is not a caller fault; skip it.
			if errors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		results = append(results, user.Public())
	}
	return results, nil
}

func (s *UserService) UpdateProfile(userID, name, email string) (domain.PublicUser, error) {
	user, err := s.users.UpdateUser(userID, name, email)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if err := s.index.Index(user.Public()); err != nil {
		s.log.Warn("Re-indexing updated user failed", "user_id", user.ID, "error", err)
	}
	return user.Public(), nil
}
