package service

import (
	"context"
	"fmt"

	"github.com/linapure/salon-api/internal/cache"
	"github.com/linapure/salon-api/internal/domain"
	"github.com/linapure/salon-api/internal/repo/postgres"
	"github.com/linapure/salon-api/internal/utils"
	"github.com/linapure/salon-api/pkg/logger"
)

type UserService interface {
	CreateUser(ctx context.Context, req *domain.UserReq) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	SearchByPhone(ctx context.Context, phone string) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)
}

type userService struct {
	userRepo  postgres.UserRepository
	userCache *cache.UserCache
}

func NewUserService(userRepo postgres.UserRepository, userCache *cache.UserCache) UserService {
	return &userService{userRepo: userRepo, userCache: userCache}
}

func validateUserInput(name, phone string) error {
	if len([]rune(utils.NormalizeString(name))) < 2 {
		return fmt.Errorf("client name must be at least 2 characters")
	}
	if !utils.IsValidClientPhone(phone) {
		return fmt.Errorf("valid phone number required (+972 followed by 7-9 digits)")
	}
	return nil
}

func (s *userService) CreateUser(ctx context.Context, req *domain.UserReq) (*domain.User, error) {
	req.Name = utils.NormalizeString(req.Name)
	req.Phone = utils.NormalizePhone(req.Phone)
	if err := validateUserInput(req.Name, req.Phone); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByPhone(ctx, req.Phone)
	if err != nil {
		return nil, internalErr("failed to check phone", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("a client with phone %s already exists", req.Phone)
	}

	user, err := s.userRepo.Create(ctx, req)
	if err != nil {
		return nil, internalErr("failed to create client", err)
	}

	s.invalidateCache(ctx)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers serves the client list from the cache when fresh, falling
// through to Postgres and repopulating on a miss.
func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	if users, ok := s.userCache.Get(ctx); ok {
		return users, nil
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, internalErr("failed to list clients", err)
	}

	if err := s.userCache.Set(ctx, users); err != nil {
		logger.WarnContext(ctx, "Failed to cache client list", "error", err)
	}
	return users, nil
}

func (s *userService) SearchByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return s.userRepo.GetByPhone(ctx, utils.NormalizeLookupPhone(phone))
}

func (s *userService) UpdateUser(ctx context.Context, id int64, patch domain.UserPatch) (*domain.User, error) {
	if patch.Name != nil {
		name := utils.NormalizeString(*patch.Name)
		if len([]rune(name)) < 2 {
			return nil, fmt.Errorf("client name must be at least 2 characters")
		}
		patch.Name = &name
	}
	if patch.Phone != nil {
		phone := utils.NormalizePhone(*patch.Phone)
		if !utils.IsValidClientPhone(phone) {
			return nil, fmt.Errorf("valid phone number required (+972 followed by 7-9 digits)")
		}
		patch.Phone = &phone
	}

	user, err := s.userRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, internalErr("failed to update client", err)
	}

	if user != nil {
		s.invalidateCache(ctx)
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int64) (bool, error) {
	deleted, err := s.userRepo.Delete(ctx, id)
	if err != nil {
		return false, internalErr("failed to delete client", err)
	}

	if deleted {
		s.invalidateCache(ctx)
	}
	return deleted, nil
}

func (s *userService) invalidateCache(ctx context.Context) {
	if err := s.userCache.Invalidate(ctx); err != nil {
		logger.WarnContext(ctx, "Failed to invalidate client cache", "error", err)
	}
}
