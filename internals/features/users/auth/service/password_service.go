package service

import (
	"context"
	"fmt"
	"log"

	"bookshelf_backend/internals/features/users/auth/dto"
	authHelper "bookshelf_backend/internals/features/users/auth/helper"
	userRepo "bookshelf_backend/internals/features/users/user/repository"
	"bookshelf_backend/internals/helpers/apperr"
)

type PasswordService struct {
	Users userRepo.Repository
	Cost  int
}

func NewPasswordService(users userRepo.Repository, cost int) *PasswordService {
	return &PasswordService{Users: users, Cost: cost}
}

// ========================== CHANGE PASSWORD ==========================
// Checks run in this order: all three fields present (400), new equals
// confirmation (400), user exists (404), old password matches (409).
// The stored hash is untouched unless every check passes.
func (s *PasswordService) ChangePassword(ctx context.Context, userID int64, in dto.ChangePasswordRequest) error {
	if in.OldPassword == "" || in.NewPassword == "" || in.NewPasswordConfirmation == "" {
		return apperr.ErrMissingPasswords
	}
	if in.NewPassword != in.NewPasswordConfirmation {
		return apperr.ErrPasswordsMismatch
	}

	u, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if authHelper.CheckPasswordHash(u.Password, in.OldPassword) != nil {
		return fmt.Errorf("user %d: %w", userID, apperr.ErrPasswordMismatch)
	}

	hash, err := authHelper.HashPassword(in.NewPassword, s.Cost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}
	if err := s.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}
	log.Printf("[INFO] [AUTH][PASSWORD] user=%d password changed", userID)
	return nil
}
