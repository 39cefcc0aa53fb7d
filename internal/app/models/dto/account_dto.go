package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/uniconnect/api/internal/app/models"
)

// --- Request DTOs ---

// RegisterRequest is the registration payload; it arrives as JSON or as a
// multipart form carrying the optional fotoPerfil file.
type RegisterRequest struct {
	Name       string   `json:"nombre" form:"nombre" example:"Alice Andrade"`
	Handle     string   `json:"usuario" form:"usuario" example:"alice"`
	Email      string   `json:"email" form:"email" example:"alice@puce.edu.ec"`
	Password   string   `json:"password" form:"password" example:"Secreto123"`
	Phone      string   `json:"celular" form:"celular" example:"0991234567"`
	University string   `json:"universidad" form:"universidad" example:"PUCE"`
	Career     string   `json:"carrera" form:"carrera" example:"Software"`
	Bio        string   `json:"bio" form:"bio"`
	Interests  []string `json:"intereses" form:"intereses"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"alice@puce.edu.ec"`
	Password string `json:"password" validate:"required" example:"Secreto123"`
}

// UpdateProfileRequest carries the mutable profile fields; nil means unchanged.
// Password is only declared so that it can be rejected.
type UpdateProfileRequest struct {
	Name       *string  `json:"nombre" form:"nombre"`
	Handle     *string  `json:"usuario" form:"usuario"`
	Email      *string  `json:"email" form:"email"`
	Phone      *string  `json:"celular" form:"celular"`
	University *string  `json:"universidad" form:"universidad"`
	Career     *string  `json:"carrera" form:"carrera"`
	Bio        *string  `json:"bio" form:"bio"`
	Interests  []string `json:"intereses" form:"intereses"`
	Password   *string  `json:"password" form:"password" swaggerignore:"true"`
}

// ChangePasswordRequest represents a password change of the caller
type ChangePasswordRequest struct {
	CurrentPassword string `json:"passwordActual" validate:"required" example:"Secreto123"`
	NewPassword     string `json:"passwordNuevo" validate:"required,password" example:"Nuevo12345"`
}

// --- Response DTOs ---

// FriendResponse is the projection of a friend inside a profile
type FriendResponse struct {
	ID     uuid.UUID `json:"_id"`
	Name   string    `json:"nombre"`
	Handle string    `json:"usuario"`
	Avatar string    `json:"fotoPerfil"`
}

// AccountResponse is the public profile of an account
type AccountResponse struct {
	ID          uuid.UUID        `json:"_id"`
	Name        string           `json:"nombre" example:"Alice Andrade"`
	Handle      string           `json:"usuario" example:"alice"`
	Email       string           `json:"email" example:"alice@puce.edu.ec"`
	Avatar      string           `json:"fotoPerfil"`
	Phone       *string          `json:"celular,omitempty"`
	University  *string          `json:"universidad,omitempty"`
	Career      *string          `json:"carrera,omitempty"`
	Bio         *string          `json:"bio,omitempty"`
	Interests   []string         `json:"intereses"`
	Role        models.RoleType  `json:"rol" example:"STUDENT"`
	Confirmed   bool             `json:"confirmEmail"`
	Active      bool             `json:"estado"`
	Friends     []FriendResponse `json:"amigos"`
	Communities []uuid.UUID      `json:"comunidades"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// LoginResponse contains the issued credential and the profile
type LoginResponse struct {
	Token     string          `json:"token"`
	ExpiresIn int             `json:"expiresIn" example:"86400"`
	Account   AccountResponse `json:"estudiante"`
}

// RegisterResponse is returned once the confirmation email has been sent
type RegisterResponse struct {
	ID    uuid.UUID `json:"_id"`
	Email string    `json:"email" example:"alice@puce.edu.ec"`
}

// NewFriendResponse builds the projection of a friend
func NewFriendResponse(a *models.Account) FriendResponse {
	return FriendResponse{
		ID:     a.ID,
		Name:   a.Name,
		Handle: a.Handle,
		Avatar: a.AvatarURL(),
	}
}

// NewAccountResponse builds the profile response; friends are the resolved friend accounts.
func NewAccountResponse(a *models.Account, friends []*models.Account) AccountResponse {
	resp := AccountResponse{
		ID:          a.ID,
		Name:        a.Name,
		Handle:      a.Handle,
		Email:       a.Email,
		Avatar:      a.AvatarURL(),
		Phone:       a.Phone,
		University:  a.University,
		Career:      a.Career,
		Bio:         a.Bio,
		Interests:   a.Interests,
		Role:        a.Role,
		Confirmed:   a.Confirmed,
		Active:      a.Active,
		Friends:     make([]FriendResponse, 0, len(friends)),
		Communities: a.Communities,
		CreatedAt:   a.CreatedAt,
	}
	if resp.Interests == nil {
		resp.Interests = []string{}
	}
	if resp.Communities == nil {
		resp.Communities = []uuid.UUID{}
	}
	for _, f := range friends {
		resp.Friends = append(resp.Friends, NewFriendResponse(f))
	}
	return resp
}
