package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lunchpool/pickem/internal/domain/user"
	"github.com/lunchpool/pickem/internal/platform/id"
)

type CreateUserInput struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

// UserService manages pool membership. Creation is admin-only; identity
// verification itself lives in the external accounts service, this side only
// keeps the roster the pool ranks and feeds.
type UserService struct {
	userRepo    user.Repository
	idGenerator id.Generator
}

func NewUserService(userRepo user.Repository, idGenerator id.Generator) *UserService {
	if idGenerator == nil {
		idGenerator = id.NewRandomGenerator()
	}

	return &UserService{
		userRepo:    userRepo,
		idGenerator: idGenerator,
	}
}

func (s *UserService) Create(ctx context.Context, principal user.Principal, input CreateUserInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.Create")
	defer span.End()

	if !principal.IsAdmin {
		return user.User{}, fmt.Errorf("%w: admin access required", ErrUnauthorized)
	}

	username := strings.ToLower(strings.TrimSpace(input.Username))
	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = username
	}

	row := user.User{
		Username:    username,
		DisplayName: displayName,
		IsAdmin:     input.IsAdmin,
	}
	if err := row.Validate(); err != nil {
		return user.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	_, exists, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return user.User{}, fmt.Errorf("get user username=%s: %w", username, err)
	}
	if exists {
		return user.User{}, fmt.Errorf("%w: username %s is already taken", ErrConflict, username)
	}

	publicID, err := s.idGenerator.NewID()
	if err != nil {
		return user.User{}, fmt.Errorf("generate user public id: %w", err)
	}
	row.PublicID = publicID

	rowID, err := s.userRepo.Insert(ctx, row)
	if err != nil {
		return user.User{}, fmt.Errorf("insert user username=%s: %w", username, err)
	}
	row.ID = rowID
	return row, nil
}

func (s *UserService) List(ctx context.Context, principal user.Principal) ([]user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.List")
	defer span.End()

	if !principal.IsAdmin {
		return nil, fmt.Errorf("%w: admin access required", ErrUnauthorized)
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].Username < users[j].Username
	})
	return users, nil
}

func (s *UserService) GetByPublicID(ctx context.Context, publicID string) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.GetByPublicID")
	defer span.End()

	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return user.User{}, fmt.Errorf("%w: public id is required", ErrInvalidInput)
	}

	row, ok, err := s.userRepo.GetByPublicID(ctx, publicID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user public_id=%s: %w", publicID, err)
	}
	if !ok {
		return user.User{}, fmt.Errorf("%w: user %s", ErrNotFound, publicID)
	}
	return row, nil
}
