// Package handlers implements the handlers for the different routes of the server to handle the incoming HTTP requests.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"server-notes/internal/managers"
	"server-notes/internal/schemas"
	"server-notes/internal/services"
	"server-notes/internal/utils"
)

// UserHdl defines the interface for handling account related HTTP requests.
type UserHdl interface {
	Signup(ctx *gin.Context)
	ResendVerificationEmail(ctx *gin.Context)
	VerifyEmail(ctx *gin.Context)
	Login(ctx *gin.Context)
	ForgotPassword(ctx *gin.Context)
	ResetPassword(ctx *gin.Context)
	GetUser(ctx *gin.Context)
	ChangePassword(ctx *gin.Context)
}

// UserHandler translates account requests to the auth service.
type UserHandler struct {
	AuthService *services.AuthService
}

// NewUserHandler returns a new UserHandler backed by the given auth service.
func NewUserHandler(authService *services.AuthService) UserHdl {
	return &UserHandler{AuthService: authService}
}

// Signup registers a new user and sends the verification mail. The token is only ever sent by mail.
func (handler *UserHandler) Signup(ctx *gin.Context) {
	signupRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.SignupRequest)

	if err := handler.AuthService.Signup(ctx, signupRequest); err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &schemas.MessageDTO{
		Message: "Signup successful. Please check your email to verify your account.",
	}, http.StatusCreated)
}

func (handler *UserHandler) ResendVerificationEmail(ctx *gin.Context) {
	emailRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.EmailRequest)

	if err := handler.AuthService.ResendVerification(ctx, emailRequest.Email); err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &schemas.MessageDTO{
		Message: "A new verification email has been sent. Please check your email.",
	}, http.StatusOK)
}

// VerifyEmail consumes the verification token from the mailed link.
func (handler *UserHandler) VerifyEmail(ctx *gin.Context) {
	token := ctx.Param(utils.TokenParamKey)

	if err := handler.AuthService.VerifyEmail(ctx, token); err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &schemas.MessageDTO{
		Message: "Your email has been verified. You can now log in.",
	}, http.StatusOK)
}

func (handler *UserHandler) Login(ctx *gin.Context) {
	loginRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.LoginRequest)

	accessToken, err := handler.AuthService.Login(ctx, loginRequest.Identifier, loginRequest.Password)
	if err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &schemas.TokenDTO{AccessToken: accessToken}, http.StatusOK)
}

func (handler *UserHandler) ForgotPassword(ctx *gin.Context) {
	emailRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.EmailRequest)

	if err := handler.AuthService.ForgotPassword(ctx, emailRequest.Email); err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &schemas.MessageDTO{
		Message: "A password reset link has been sent. Please check your email.",
	}, http.StatusOK)
}

// ResetPassword consumes the reset token from the mailed link and sets the new password.
func (handler *UserHandler) ResetPassword(ctx *gin.Context) {
	token := ctx.Param(utils.TokenParamKey)
	resetRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.ResetPasswordRequest)

	if err := handler.AuthService.ResetPassword(ctx, token, resetRequest.NewPassword); err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, &schemas.MessageDTO{
		Message: "Your password has been reset. You can now log in with your new password.",
	}, http.StatusOK)
}

// GetUser returns the logged-in user without the password.
func (handler *UserHandler) GetUser(ctx *gin.Context) {
	userDto, err := handler.AuthService.Profile(ctx, currentUsername(ctx))
	if err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, userDto, http.StatusOK)
}

func (handler *UserHandler) ChangePassword(ctx *gin.Context) {
	changePasswordRequest := ctx.MustGet(utils.SanitizedPayloadKey.String()).(*schemas.ChangePasswordRequest)

	if err := handler.AuthService.ChangePassword(ctx, currentUsername(ctx), changePasswordRequest); err != nil {
		utils.WriteServiceError(ctx, err)
		return
	}

	utils.WriteAndLogResponse(ctx, nil, http.StatusNoContent)
}

// currentUsername returns the subject of the session token verified by the JWT middleware.
func currentUsername(ctx *gin.Context) string {
	claims := ctx.MustGet(utils.ClaimsKey.String()).(*managers.TokenClaims)
	return claims.Subject
}
