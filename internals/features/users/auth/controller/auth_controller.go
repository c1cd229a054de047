package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"bookshelf_backend/internals/features/users/auth/dto"
	"bookshelf_backend/internals/features/users/auth/service"
	helper "bookshelf_backend/internals/helpers"
	"bookshelf_backend/internals/helpers/apperr"
	helperAuth "bookshelf_backend/internals/helpers/auth"
)

type AuthController struct {
	Auth      *service.AuthService
	Passwords *service.PasswordService
}

func NewAuthController(auth *service.AuthService, passwords *service.PasswordService) *AuthController {
	return &AuthController{Auth: auth, Passwords: passwords}
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := helper.BindAndValidate(c, &req); !ok {
		return err
	}

	p, err := ac.Auth.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		log.Printf("[WARN] [AUTH][LOGIN] username=%s rejected", req.Username)
		return helper.JsonDomainError(c, err)
	}
	token, exp, err := ac.Auth.IssueToken(p)
	if errors.Is(err, service.ErrTokensDisabled) {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "token login is not configured")
	}
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	log.Printf("[INFO] [AUTH][LOGIN] username=%s", p.Username)
	return helper.JsonOK(c, dto.LoginResponse{Token: token, TokenType: "Bearer", ExpiresAt: exp})
}

// POST /api/auth/logout (Authorization: Bearer <token>)
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	raw, ok := helperAuth.BearerToken(c)
	if !ok {
		return helper.JsonDomainError(c, apperr.ErrUnauthorized)
	}
	err := ac.Auth.Revoke(c.UserContext(), raw)
	if errors.Is(err, service.ErrTokensDisabled) {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "token logout is not configured")
	}
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, fiber.Map{"success": true, "message": "logged out"})
}

// PATCH /api/users/:userId/password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	userID, err := helper.ParamID(c, "userId")
	if err != nil {
		return helper.JsonDomainError(c, err)
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := ac.Passwords.ChangePassword(c.UserContext(), userID, req); err != nil {
		return helper.JsonDomainError(c, err)
	}
	return helper.JsonOK(c, fiber.Map{"success": true, "message": "password updated"})
}
