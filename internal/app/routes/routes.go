package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniconnect/api/internal/app/controllers"
	"github.com/uniconnect/api/internal/app/models"
	"github.com/uniconnect/api/internal/app/models/dto"
	"github.com/uniconnect/api/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Account   *controllers.AccountController
	Friend    *controllers.FriendController
	Community *controllers.CommunityController
	Content   *controllers.ContentController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	subscribe gin.HandlerFunc,
) {
	v1 := router.Group("/api/v1")
	adminOnly := authMiddleware.RoleRequired(string(models.RoleAdministrator))

	// --- Public account routes ---
	public := v1.Group("/estudiante")
	{
		public.POST("/registro", ctrl.Account.Register)
		public.GET("/confirmar/:token", ctrl.Account.ConfirmEmail)
		public.POST("/login", ctrl.Account.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		accounts := authenticated.Group("/estudiante")
		{
			accounts.GET("/perfil", ctrl.Account.GetProfile)
			accounts.PUT("/password", ctrl.Account.ChangePassword)

			accounts.GET("/amigos", ctrl.Friend.ListFriends)
			accounts.POST("/amigos/:id", ctrl.Friend.AddFriend)
			accounts.DELETE("/amigos/:id", ctrl.Friend.RemoveFriend)

			accounts.GET("/:id", ctrl.Account.GetAccount)
			accounts.PUT("/:id", ctrl.Account.UpdateProfile)
			accounts.DELETE("/:id", ctrl.Account.Deactivate)
			accounts.PUT("/:id/reactivar", adminOnly, ctrl.Account.Reactivate)
		}

		communities := authenticated.Group("/comunidades")
		{
			communities.GET("", ctrl.Community.GetAllCommunities)
			communities.POST("", adminOnly, ctrl.Community.CreateCommunity)
			communities.GET("/:id", ctrl.Community.GetCommunityByID)
			communities.POST("/:id/miembros", ctrl.Community.JoinCommunity)
			communities.DELETE("/:id/miembros", ctrl.Community.LeaveCommunity)
			communities.GET("/:id/ws", subscribe)
		}

		authenticated.POST("/publicacion", ctrl.Content.CreatePublication)
		authenticated.GET("/publicacion/:publicacionId", ctrl.Content.ListComments)
		authenticated.DELETE("/publicacion/:id", ctrl.Content.DeletePublication)
		authenticated.GET("/publicaciones/:comunidadId", ctrl.Content.ListPublications)

		authenticated.POST("/comentario", ctrl.Content.CreateComment)
		authenticated.PUT("/comentario/:id", ctrl.Content.UpdateComment)
		authenticated.DELETE("/comentario/:id", ctrl.Content.DeleteComment)
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})
}
