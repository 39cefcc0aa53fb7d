package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/app/services"
	"github.com/uniconnect/api/internal/middleware"
)

// CommunityController handles community operations
type CommunityController struct {
	communityService services.CommunityService
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService) *CommunityController {
	return &CommunityController{communityService: communityService}
}

// GetAllCommunities godoc
// @Summary List communities
// @Tags comunidades
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.CommunityResponse}
// @Router /comunidades [get]
func (c *CommunityController) GetAllCommunities(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	communities, err := c.communityService.GetAllCommunities(ctx.Request.Context(), who.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(communities))
}

// GetCommunityByID godoc
// @Summary Get a community
// @Tags comunidades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Success 200 {object} dto.APIResponse{data=dto.CommunityDetailResponse}
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /comunidades/{id} [get]
func (c *CommunityController) GetCommunityByID(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	community, err := c.communityService.GetCommunityByID(ctx.Request.Context(), who.ID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(community))
}

// CreateCommunity godoc
// @Summary Create a community
// @Tags comunidades
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCommunityRequest true "Community data"
// @Success 201 {object} dto.APIResponse{data=dto.CommunityResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Administrators only"
// @Failure 409 {object} dto.ErrorResponse "Name already taken"
// @Router /comunidades [post]
func (c *CommunityController) CreateCommunity(ctx *gin.Context) {
	var req dto.CreateCommunityRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	community, err := c.communityService.CreateCommunity(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(community))
}

// JoinCommunity godoc
// @Summary Join a community
// @Tags comunidades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Success 200 {object} dto.APIResponse "Joined"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Failure 409 {object} dto.ErrorResponse "Already a member"
// @Router /comunidades/{id}/miembros [post]
func (c *CommunityController) JoinCommunity(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	if err := c.communityService.JoinCommunity(ctx.Request.Context(), who.ID, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("joined community"))
}

// LeaveCommunity godoc
// @Summary Leave a community
// @Tags comunidades
// @Produce json
// @Security BearerAuth
// @Param id path string true "Community ID"
// @Success 200 {object} dto.APIResponse "Left"
// @Failure 400 {object} dto.ErrorResponse "Not a member"
// @Failure 404 {object} dto.ErrorResponse "Community not found"
// @Router /comunidades/{id}/miembros [delete]
func (c *CommunityController) LeaveCommunity(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	if err := c.communityService.LeaveCommunity(ctx.Request.Context(), who.ID, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("left community"))
}
