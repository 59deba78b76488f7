// Package routing wires the handlers, middleware and managers into the gin router.
package routing

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"server-notes/internal/goerrors"
	"server-notes/internal/handlers"
	"server-notes/internal/managers"
	"server-notes/internal/middleware"
	"server-notes/internal/schemas"
	"server-notes/internal/services"
	"server-notes/internal/utils"
)

const apiName = "Server Notes"

// InitRouter builds the router with every route of the server.
func InitRouter(databaseMgr managers.DatabaseMgr, jwtMgr managers.JWTMgr, authService *services.AuthService,
	noteHdl handlers.NoteHdl, allowedOrigins []string) *gin.Engine {
	// Initialize router with logging and recovery middleware
	router := gin.New()
	router.ContextWithFallback = true
	// Initialize middleware
	setupCommonMiddleware(router, allowedOrigins)
	// Setup routes
	setupRoutes(router, databaseMgr, jwtMgr, handlers.NewUserHandler(authService), noteHdl)

	return router
}

func setupCommonMiddleware(router *gin.Engine, allowedOrigins []string) {
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "PATCH", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Trace-Id"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(func(c *gin.Context) {
		c.Header("Content-Type", "application/json")
	})
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}

func setupRoutes(router *gin.Engine, databaseMgr managers.DatabaseMgr, jwtMgr managers.JWTMgr, userHdl handlers.UserHdl,
	noteHdl handlers.NoteHdl) {
	// Set up version route
	router.GET("/", func(c *gin.Context) {
		apiVersion := utils.ExtractServiceName()
		if apiVersion == "main" {
			apiVersion = "main:latest"
		}
		metadata := &schemas.MetadataDTO{
			ApiVersion: apiVersion,
			ApiName:    apiName,
		}
		utils.WriteAndLogResponse(c, metadata, http.StatusOK)
	})

	// Set up health route
	router.GET("/health", func(c *gin.Context) {
		if err := databaseMgr.Ping(c); err != nil {
			utils.WriteAndLogError(c, goerrors.UpstreamUnavailable, http.StatusServiceUnavailable, err)
			return
		}
		c.Status(http.StatusOK)
	})

	authRoutes(router, userHdl)

	// The following routes require the user to be authenticated
	protected := router.Group("/")
	protected.Use(jwtMgr.JWTMiddleware())
	protected.GET("/user", userHdl.GetUser)
	protected.PATCH("/user/password", middleware.ValidateAndSanitizeStruct[schemas.ChangePasswordRequest](), userHdl.ChangePassword)
	noteRoutes(protected, noteHdl)
}

func authRoutes(router *gin.Engine, userHdl handlers.UserHdl) {
	router.POST("/signup", middleware.ValidateAndSanitizeStruct[schemas.SignupRequest](), userHdl.Signup)
	router.POST("/resend-verification-email", middleware.ValidateAndSanitizeStruct[schemas.EmailRequest](), userHdl.ResendVerificationEmail)
	router.GET("/verify-email/:"+utils.TokenParamKey, userHdl.VerifyEmail)
	router.POST("/login", middleware.ValidateAndSanitizeStruct[schemas.LoginRequest](), userHdl.Login)
	router.POST("/forgot-password", middleware.ValidateAndSanitizeStruct[schemas.EmailRequest](), userHdl.ForgotPassword)
	router.POST("/reset-password/:"+utils.TokenParamKey, middleware.ValidateAndSanitizeStruct[schemas.ResetPasswordRequest](), userHdl.ResetPassword)
}

func noteRoutes(protected *gin.RouterGroup, noteHdl handlers.NoteHdl) {
	noteIdPath := "/:" + utils.NoteIdParamKey

	notes := protected.Group("/notes")
	notes.POST("", middleware.ValidateAndSanitizeStruct[schemas.CreateNoteRequest](), noteHdl.CreateNote)
	notes.GET("", noteHdl.GetNotes)
	notes.GET("/search", noteHdl.SearchNotes)
	notes.GET(noteIdPath, noteHdl.GetNote)
	notes.PUT(noteIdPath, middleware.ValidateAndSanitizeStruct[schemas.EditNoteRequest](), noteHdl.EditNote)
	notes.PUT(noteIdPath+"/pin", noteHdl.PinNote)
	notes.DELETE(noteIdPath, noteHdl.DeleteNote)

	// Paths used by earlier frontend releases
	protected.POST("/add-note", middleware.ValidateAndSanitizeStruct[schemas.CreateNoteRequest](), noteHdl.CreateNote)
	protected.GET("/search-notes", noteHdl.SearchNotes)
	protected.PUT("/edit-note"+noteIdPath, middleware.ValidateAndSanitizeStruct[schemas.EditNoteRequest](), noteHdl.EditNote)
	protected.PUT("/pin-note"+noteIdPath, noteHdl.PinNote)
	protected.DELETE("/delete-note"+noteIdPath, noteHdl.DeleteNote)
}
