package routes

import (
	"net/http"

	"chamado-service/controllers"
	"chamado-service/middleware"
	"chamado-service/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Options configures the auth middlewares of the route groups.
type Options struct {
	Sessions       middleware.SessionValidator
	APIKeyHeader   string
	APIKey         string
	AllowedOrigins []string
}

// RegisterRoutes registers the login flow, the ticket page, its JSON routes
// and the API-key routes.
func RegisterRoutes(r *gin.Engine, auth *controllers.AuthController, chamado *controllers.ChamadoController, opts Options) {
	zap.L().Debug("Registering routes...")

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.StaticFS("/static", web.Static())

	r.GET("/", auth.Root)
	r.GET("/login", auth.LoginPage)
	r.GET("/login/google", auth.GoogleLogin)
	r.GET("/login/google/callback", auth.GoogleCallback)
	r.GET("/logout", auth.Logout)

	pages := r.Group("/chamado")
	pages.Use(middleware.RequireSessionPage(opts.Sessions))
	{
		pages.GET("", chamado.Page)
		pages.POST("", chamado.Submit)
		pages.POST("/planilha", chamado.UploadPage)
		pages.POST("/ui", chamado.UI)
	}

	jsonRoutes := r.Group("/chamado")
	jsonRoutes.Use(middleware.RequireSessionJSON(opts.Sessions))
	{
		jsonRoutes.POST("/carregar-planilha", chamado.LoadSpreadsheet)
		jsonRoutes.POST("/preview", chamado.Preview)
		jsonRoutes.GET("/jobs/:id", chamado.JobStatus)
		jsonRoutes.GET("/historico", chamado.History)
	}

	api := r.Group("/api/v1/chamado")
	api.Use(middleware.CORS(opts.AllowedOrigins, opts.APIKeyHeader))
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.Use(middleware.APIKeyAuth(opts.APIKeyHeader, opts.APIKey))
	{
		api.POST("/preview", chamado.Preview)
		api.POST("/carregar-planilha", chamado.LoadSpreadsheet)
		api.GET("/jobs/:id", chamado.JobStatus)
		api.GET("/historico", chamado.History)
	}
}
