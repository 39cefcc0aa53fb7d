package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/uniconnect/api/internal/app/models"
)

// CreateCommunityRequest represents community creation data
type CreateCommunityRequest struct {
	Name        string `json:"nombre" validate:"required,min=2,max=100" example:"Ingeniería de Software"`
	Description string `json:"descripcion" validate:"max=500"`
}

// CommunityResponse represents basic community information
type CommunityResponse struct {
	ID          uuid.UUID `json:"_id"`
	Name        string    `json:"nombre"`
	Description *string   `json:"descripcion,omitempty"`
	MemberCount int       `json:"totalMiembros"`
	IsMember    bool      `json:"esMiembro"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CommunityDetailResponse extends CommunityResponse with the member list
type CommunityDetailResponse struct {
	CommunityResponse
	Members []uuid.UUID `json:"estudiantes"`
}

// NewCommunityResponse builds the response as seen by viewer
func NewCommunityResponse(c *models.Community, viewer uuid.UUID) CommunityResponse {
	return CommunityResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		MemberCount: len(c.Members),
		IsMember:    c.HasMember(viewer),
		CreatedAt:   c.CreatedAt,
	}
}

// NewCommunityDetailResponse includes the member ids
func NewCommunityDetailResponse(c *models.Community, viewer uuid.UUID) CommunityDetailResponse {
	members := c.Members
	if members == nil {
		members = []uuid.UUID{}
	}
	return CommunityDetailResponse{
		CommunityResponse: NewCommunityResponse(c, viewer),
		Members:           members,
	}
}
