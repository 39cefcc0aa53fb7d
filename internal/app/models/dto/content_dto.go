package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/uniconnect/api/internal/app/models"
)

// --- Request DTOs ---

// CreatePublicationRequest is the multipart form of a new publication; the
// optional image arrives in the "imagen" file field.
type CreatePublicationRequest struct {
	Text        string `form:"texto" json:"texto" example:"Hola comunidad"`
	CommunityID string `form:"comunidad" json:"comunidad" example:"5f0c3c1e-8d7b-4a53-9e0c-1b2f3a4d5e6f"`
}

// CreateCommentRequest represents a new comment
type CreateCommentRequest struct {
	PublicationID string `json:"publicacion" example:"0b7d4f5e-1c2a-4e3b-8f9d-6a5b4c3d2e1f"`
	CommunityID   string `json:"comunidad" example:"5f0c3c1e-8d7b-4a53-9e0c-1b2f3a4d5e6f"`
	Text          string `json:"contenido" example:"Muy buen aporte"`
}

// UpdateCommentRequest carries the new text of a comment
type UpdateCommentRequest struct {
	Text string `json:"contenido" example:"Texto corregido"`
}

// --- Response DTOs ---

// MediaResponse is an attached image
type MediaResponse struct {
	URL     string `json:"url"`
	AssetID string `json:"public_id"`
}

// PublicationResponse is a publication enriched with its author
type PublicationResponse struct {
	ID          uuid.UUID                `json:"_id"`
	Text        *string                  `json:"texto,omitempty"`
	Media       *MediaResponse           `json:"imagen,omitempty"`
	Author      *models.AuthorProjection `json:"autor"`
	CommunityID uuid.UUID                `json:"comunidad"`
	CreatedAt   time.Time                `json:"fechaCreacion"`
}

// CommentResponse is a comment enriched with its author
type CommentResponse struct {
	ID            uuid.UUID                `json:"_id"`
	PublicationID uuid.UUID                `json:"publicacion"`
	CommunityID   uuid.UUID                `json:"comunidad"`
	Author        *models.AuthorProjection `json:"usuario"`
	Text          string                   `json:"contenido"`
	CreatedAt     time.Time                `json:"fecha_creacion"`
	UpdatedAt     time.Time                `json:"fecha_actualizacion"`
}

// UpdateCommentResponse is returned by a successful edit
type UpdateCommentResponse struct {
	Message string          `json:"mensaje"`
	Comment CommentResponse `json:"comentario"`
}

// --- Event payloads ---

// CommentCreatedEvent is the full comment plus the publication id
type CommentCreatedEvent struct {
	CommentResponse
	PublicationRef uuid.UUID `json:"publicacionId"`
}

// CommentUpdatedEvent carries the new text and the unchanged author
type CommentUpdatedEvent struct {
	ID            uuid.UUID                `json:"_id"`
	Text          string                   `json:"contenido"`
	Author        *models.AuthorProjection `json:"usuario"`
	PublicationID uuid.UUID                `json:"publicacionId"`
	CommunityID   uuid.UUID                `json:"comunidadId"`
}

// PublicationDeletedEvent identifies a removed publication
type PublicationDeletedEvent struct {
	PublicationID uuid.UUID `json:"publicacionId"`
	CommunityID   uuid.UUID `json:"comunidadId"`
}

// CommentDeletedEvent identifies a removed comment
type CommentDeletedEvent struct {
	CommentID     uuid.UUID `json:"comentarioId"`
	PublicationID uuid.UUID `json:"publicacionId"`
	CommunityID   uuid.UUID `json:"comunidadId"`
}

// NewPublicationResponse maps a publication
func NewPublicationResponse(p *models.Publication) PublicationResponse {
	resp := PublicationResponse{
		ID:          p.ID,
		Text:        p.Text,
		Author:      p.Author,
		CommunityID: p.CommunityID,
		CreatedAt:   p.CreatedAt,
	}
	if !p.Media.IsZero() {
		resp.Media = &MediaResponse{URL: p.Media.URL, AssetID: p.Media.AssetID}
	}
	return resp
}

// NewCommentResponse maps a comment
func NewCommentResponse(c *models.Comment) CommentResponse {
	return CommentResponse{
		ID:            c.ID,
		PublicationID: c.PublicationID,
		CommunityID:   c.CommunityID,
		Author:        c.Author,
		Text:          c.Text,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}
