package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/app/services"
	"github.com/uniconnect/api/internal/middleware"
)

// ContentController handles publications and comments
type ContentController struct {
	publicationService services.PublicationService
	commentService     services.CommentService
}

// NewContentController creates a new ContentController
func NewContentController(publicationService services.PublicationService, commentService services.CommentService) *ContentController {
	return &ContentController{
		publicationService: publicationService,
		commentService:     commentService,
	}
}

// CreatePublication godoc
// @Summary Create a publication
// @Description The caller must be a member of the community. Text, image or both are required. Subscribers receive newPublication_{comunidad}.
// @Tags publicaciones
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param comunidad formData string true "Community ID"
// @Param texto formData string false "Text"
// @Param imagen formData file false "Image (JPEG/PNG, max 5MB)"
// @Success 201 {object} dto.APIResponse{data=dto.PublicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the community"
// @Failure 502 {object} dto.ErrorResponse "Image upload failed"
// @Router /publicacion [post]
func (c *ContentController) CreatePublication(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.CreatePublicationRequest
	if !middleware.Bind(ctx, &req) {
		return
	}
	image, err := optionalFile(ctx, "imagen")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	publication, err := c.publicationService.CreatePublication(ctx.Request.Context(), who.ID, &req, image)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(publication))
}

// ListPublications godoc
// @Summary List the publications of a community
// @Description Newest first
// @Tags publicaciones
// @Produce json
// @Security BearerAuth
// @Param comunidadId path string true "Community ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.PublicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Router /publicaciones/{comunidadId} [get]
func (c *ContentController) ListPublications(ctx *gin.Context) {
	publications, err := c.publicationService.ListByCommunity(ctx.Request.Context(), ctx.Param("comunidadId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(publications))
}

// DeletePublication godoc
// @Summary Delete a publication
// @Description Only the author may delete a publication. Its comments and image are removed too.
// @Tags publicaciones
// @Produce json
// @Security BearerAuth
// @Param id path string true "Publication ID"
// @Success 200 {object} dto.APIResponse "Publication deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Publication not found"
// @Router /publicacion/{id} [delete]
func (c *ContentController) DeletePublication(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	if err := c.publicationService.DeletePublication(ctx.Request.Context(), who.ID, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("publication deleted"))
}

// CreateComment godoc
// @Summary Comment on a publication
// @Description The comment's community must be the publication's community and the caller must be a member of it
// @Tags comentarios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=dto.CommentResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid input or community mismatch"
// @Failure 403 {object} dto.ErrorResponse "Not a member of the community"
// @Failure 404 {object} dto.ErrorResponse "Publication not found"
// @Router /comentario [post]
func (c *ContentController) CreateComment(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	comment, err := c.commentService.CreateComment(ctx.Request.Context(), who.ID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(comment))
}

// UpdateComment godoc
// @Summary Edit a comment
// @Description Only the author may edit a comment
// @Tags comentarios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Param request body dto.UpdateCommentRequest true "New text"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateCommentResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Comment not found"
// @Router /comentario/{id} [put]
func (c *ContentController) UpdateComment(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	comment, err := c.commentService.UpdateComment(ctx.Request.Context(), who.ID, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UpdateCommentResponse{
		Message: "comment updated",
		Comment: *comment,
	}))
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Only the author may delete a comment
// @Tags comentarios
// @Produce json
// @Security BearerAuth
// @Param id path string true "Comment ID"
// @Success 200 {object} dto.APIResponse "Comment deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Comment not found"
// @Router /comentario/{id} [delete]
func (c *ContentController) DeleteComment(ctx *gin.Context) {
	who, ok := caller(ctx)
	if !ok {
		return
	}

	if err := c.commentService.DeleteComment(ctx.Request.Context(), who.ID, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewMessageResponse("comment deleted"))
}

// ListComments godoc
// @Summary List the comments of a publication
// @Description Oldest first
// @Tags comentarios
// @Produce json
// @Security BearerAuth
// @Param publicacionId path string true "Publication ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CommentResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Router /publicacion/{publicacionId} [get]
func (c *ContentController) ListComments(ctx *gin.Context) {
	comments, err := c.commentService.ListByPublication(ctx.Request.Context(), ctx.Param("publicacionId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(comments))
}
