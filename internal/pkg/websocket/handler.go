package websocket

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/uniconnect/api/internal/middleware"
	"github.com/uniconnect/api/internal/pkg/apperrors"
)

// MembershipChecker answers whether an account belongs to a community
type MembershipChecker interface {
	IsMember(ctx context.Context, communityID, accountID uuid.UUID) (bool, error)
}

// Handler upgrades authenticated community members to event subscribers
type Handler struct {
	hub        *Hub
	membership MembershipChecker
	upgrader   websocket.Upgrader
	logger     zerolog.Logger
}

// NewHandler creates a new websocket handler
func NewHandler(hub *Hub, membership MembershipChecker, origins *OriginPolicy, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:        hub,
		membership: membership,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.Check,
		},
		logger: logger,
	}
}

// Subscribe godoc
// @Summary Subscribe to community events
// @Description Upgrades to a websocket that receives newPublication, deletePublication, newComentario, updateComentario and deleteComentario events of the community. The token may be passed as a query parameter.
// @Tags realtime
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Param token query string false "Bearer token for clients that cannot set headers"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} dto.ErrorResponse "Invalid community ID"
// @Failure 401 {object} dto.ErrorResponse "Missing or invalid token"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the community"
// @Router /comunidades/{id}/ws [get]
func (h *Handler) Subscribe(c *gin.Context) {
	communityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		middleware.HandleAPIError(c, apperrors.NewFieldError("id", "invalid community id"))
		return
	}

	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		middleware.HandleAPIError(c, apperrors.ErrTokenNotFound)
		return
	}

	isMember, err := h.membership.IsMember(c.Request.Context(), communityID, accountID)
	if err != nil {
		h.logger.Error().Err(err).
			Str("communityID", communityID.String()).
			Str("accountID", accountID.String()).
			Msg("Failed to check community membership")
		middleware.HandleAPIError(c, err)
		return
	}
	if !isMember {
		middleware.HandleAPIError(c, apperrors.NewForbiddenError("you are not a member of this community"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Warn().Err(err).Str("communityID", communityID.String()).Msg("Websocket upgrade failed")
		return
	}

	client := newClient(h.hub, conn, accountID, communityID, h.logger)
	if !h.hub.Subscribe(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
