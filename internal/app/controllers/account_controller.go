package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/app/services"
	"github.com/uniconnect/api/internal/middleware"
)

// AccountController handles registration, login and profile operations
type AccountController struct {
	registrationService services.RegistrationService
	accountService      services.AccountService
	logger              zerolog.Logger
}

// NewAccountController creates a new AccountController
func NewAccountController(registrationService services.RegistrationService, accountService services.AccountService, logger zerolog.Logger) *AccountController {
	return &AccountController{
		registrationService: registrationService,
		accountService:      accountService,
		logger:              logger,
	}
}

// Register handles account registration
// @Summary Register a new student
// @Description Creates an unconfirmed account and sends the confirmation email. If the email cannot be delivered the account is removed again and 502 is returned. Accepts JSON or a multipart form with an optional fotoPerfil image.
// @Tags estudiante
// @Accept json,mpfd
// @Produce json
// @Param request body dto.RegisterRequest true "Registration data"
// @Param fotoPerfil formData file false "Profile picture (JPEG/PNG, max 5MB)"
// @Success 201 {object} dto.APIResponse{data=dto.RegisterResponse} "Confirmation email sent"
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 409 {object} dto.ErrorResponse "Email or username already registered"
// @Failure 502 {object} dto.ErrorResponse "Confirmation email could not be sent"
// @Router /estudiante/registro [post]
func (c *AccountController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !middleware.Bind(ctx, &req) {
		return
	}

	avatar, err := optionalFile(ctx, "fotoPerfil")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.registrationService.Register(ctx.Request.Context(), &req, avatar)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	body := dto.NewSuccessResponse(resp)
	body.Message = "account created, check your email to confirm it"
	ctx.JSON(http.StatusCreated, body)
}

// ConfirmEmail handles email confirmation
// @Summary Confirm an email address
// @Description Consumes the token sent by email. A token can be used once.
// @Tags estudiante
// @Produce json
// @Param token path string true "Confirmation token"
// @Success 200 {object} dto.APIResponse "Email confirmed"
// @Failure 404 {object} dto.ErrorResponse "Unknown or already used token"
// @Router /estudiante/confirmar/{token} [get]
func (c *AccountController) ConfirmEmail(ctx *gin.Context) {
	if err := c.registrationService.ConfirmEmail(ctx.Request.Context(), ctx.Param("token")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("email confirmed, you can now log in"))
}

// Login handles account login
// @Summary Log in
// @Description Authenticates a confirmed, active account and returns a bearer token
// @Tags estudiante
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 401 {object} dto.ErrorResponse "Invalid credentials"
// @Failure 403 {object} dto.ErrorResponse "Email not confirmed or account deactivated"
// @Failure 404 {object} dto.ErrorResponse "Email not registered"
// @Router /estudiante/login [post]
func (c *AccountController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.accountService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetProfile returns the caller's profile
// @Summary Get own profile
// @Tags estudiante
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse}
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Router /estudiante/perfil [get]
func (c *AccountController) GetProfile(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	resp, err := c.accountService.GetProfile(ctx.Request.Context(), who.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// GetAccount returns any account's profile
// @Summary Get an account
// @Tags estudiante
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /estudiante/{id} [get]
func (c *AccountController) GetAccount(ctx *gin.Context) {
	resp, err := c.accountService.GetAccount(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// UpdateProfile updates profile fields and optionally the avatar
// @Summary Update a profile
// @Description Only the owner or an administrator may update a profile. The password cannot be changed here.
// @Tags estudiante
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Param request body dto.UpdateProfileRequest true "Fields to change"
// @Param fotoPerfil formData file false "New profile picture"
// @Success 200 {object} dto.APIResponse{data=dto.AccountResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "Email or username already taken"
// @Router /estudiante/{id} [put]
func (c *AccountController) UpdateProfile(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !middleware.Bind(ctx, &req) {
		return
	}
	avatar, err := optionalFile(ctx, "fotoPerfil")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	resp, err := c.accountService.UpdateProfile(ctx.Request.Context(), who, ctx.Param("id"), &req, avatar)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ChangePassword changes the caller's password
// @Summary Change own password
// @Tags estudiante
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ChangePasswordRequest true "Current and new password"
// @Success 200 {object} dto.APIResponse "Password changed"
// @Failure 400 {object} dto.ErrorResponse "Wrong current password or weak new password"
// @Router /estudiante/password [put]
func (c *AccountController) ChangePassword(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	if err := c.accountService.ChangePassword(ctx.Request.Context(), who.ID, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("password changed"))
}

// Deactivate disables an account
// @Summary Deactivate an account
// @Description The owner or an administrator may deactivate an account
// @Tags estudiante
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} dto.APIResponse "Account deactivated"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /estudiante/{id} [delete]
func (c *AccountController) Deactivate(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	if err := c.accountService.Deactivate(ctx.Request.Context(), who, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("account deactivated"))
}

// Reactivate enables a deactivated account
// @Summary Reactivate an account
// @Tags estudiante
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID"
// @Success 200 {object} dto.APIResponse "Account reactivated"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /estudiante/{id}/reactivar [put]
func (c *AccountController) Reactivate(ctx *gin.Context) {
	if err := c.accountService.Reactivate(ctx.Request.Context(), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("account reactivated"))
}
