package service

import (
	"context"

	"carmarket/internal/models"
	"carmarket/internal/policy"
	"carmarket/internal/repository"
	"carmarket/internal/validation"
)

type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries the editable profile fields. Empty strings mean
// "leave unchanged".
type UpdateProfileInput struct {
	Name  string
	Email string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	return s.userRepo.Count(ctx)
}

// UpdateProfile edits the actor's own name and email. A changed email must
// not collide with another account.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	fields := map[string][]string{}
	if in.Name != "" {
		if err := validation.ValidateName(in.Name); err != nil {
			fields["name"] = append(fields["name"], err.Error())
		} else {
			user.Name = in.Name
		}
	}
	if in.Email != "" && in.Email != user.Email {
		if err := validation.ValidateEmail(in.Email); err != nil {
			fields["email"] = append(fields["email"], err.Error())
		} else {
			existing, err := s.userRepo.GetByEmail(ctx, in.Email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				fields["email"] = append(fields["email"], "The email has already been taken.")
			} else {
				user.Email = in.Email
			}
		}
	}
	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// BlockUser flags an account so it can no longer authenticate or write.
// Blocking is idempotent; blocking an already blocked user succeeds.
func (s *UserService) BlockUser(ctx context.Context, actor *models.User, targetID uint) (*models.User, error) {
	if err := policy.CanBlockUser(actor, targetID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.IsBlocked = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UnblockUser restores a blocked account. Idempotent like BlockUser.
func (s *UserService) UnblockUser(ctx context.Context, actor *models.User, targetID uint) (*models.User, error) {
	if err := policy.CanModerate(actor); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	user.IsBlocked = false
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
