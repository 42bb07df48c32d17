package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	config "github.com/phillip/campus-services-go/config"
	controllers "github.com/phillip/campus-services-go/controllers"
	middleware "github.com/phillip/campus-services-go/middleware"
	models "github.com/phillip/campus-services-go/models"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, d *controllers.Deps) {
	r.Use(middleware.RequestID(), middleware.RequestLogger(), middleware.Metrics(), middleware.CORS(cfg.CORSOrigins))

	// public
	r.GET("/healthz", controllers.Health(d))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/configs/public", controllers.ListPublicConfigs(d))

	// protected
	auth := middleware.AuthMiddleware(cfg.JWTSecret)

	items := r.Group("/items")
	items.Use(auth)
	{
		items.POST("", controllers.CreateItem(d))
		items.GET("", controllers.ListItems(d))
		items.GET("/:id", controllers.GetItem(d))
		items.PATCH("/:id", controllers.UpdateItem(d))
		items.POST("/:id/claims", controllers.SubmitClaim(d))
	}

	// moderation
	admin := r.Group("/admin")
	admin.Use(auth)
	modItems := admin.Group("/items")
	modItems.Use(middleware.RequireRole(models.RoleModerator))
	{
		modItems.POST("/sweep", controllers.SweepItems(d))
		modItems.GET("/:id", controllers.AdminGetItem(d))
		modItems.POST("/:id/claims/:claimId/approve", controllers.ApproveClaim(d))
		modItems.POST("/:id/claims/:claimId/reject", controllers.RejectClaim(d))
		modItems.POST("/:id/resolve", controllers.ResolveItem(d))
		modItems.DELETE("/:id", controllers.DeleteItem(d))
	}

	configs := admin.Group("/configs")
	configs.Use(middleware.RequireRole(models.RoleAdmin))
	{
		configs.GET("", controllers.ListConfigs(d))
		configs.GET("/:key", controllers.GetConfig(d))
		configs.PUT("/:key", controllers.PutConfig(d))
		configs.DELETE("/:key", controllers.DeleteConfig(d))
	}
}
