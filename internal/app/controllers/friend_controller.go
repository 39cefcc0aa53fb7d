package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/app/services"
	"github.com/uniconnect/api/internal/middleware"
)

// FriendController handles friend-graph operations of the caller
type FriendController struct {
	friendService services.FriendService
}

// NewFriendController creates a new FriendController
func NewFriendController(friendService services.FriendService) *FriendController {
	return &FriendController{friendService: friendService}
}

// ListFriends godoc
// @Summary List own friends
// @Tags amigos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.FriendResponse}
// @Router /estudiante/amigos [get]
func (c *FriendController) ListFriends(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	friends, err := c.friendService.ListFriends(ctx.Request.Context(), who.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(friends))
}

// AddFriend godoc
// @Summary Add a friend
// @Description Links the caller and the target account in both directions
// @Tags amigos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID of the new friend"
// @Success 200 {object} dto.APIResponse "Friend added"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID or self"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 409 {object} dto.ErrorResponse "Already friends"
// @Router /estudiante/amigos/{id} [post]
func (c *FriendController) AddFriend(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	if err := c.friendService.AddFriend(ctx.Request.Context(), who.ID, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("friend added"))
}

// RemoveFriend godoc
// @Summary Remove a friend
// @Tags amigos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Account ID of the friend"
// @Success 200 {object} dto.APIResponse "Friend removed"
// @Failure 400 {object} dto.ErrorResponse "Not friends"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Router /estudiante/amigos/{id} [delete]
func (c *FriendController) RemoveFriend(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	if err := c.friendService.RemoveFriend(ctx.Request.Context(), who.ID, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("friend removed"))
}
