package utils

import (
	"github.com/gin-gonic/gin"

	"server-notes/internal/goerrors"
	"server-notes/internal/schemas"
)

// WriteAndLogResponse encodes the response object to JSON and writes it to the HTTP response with the given status code.
func WriteAndLogResponse(ctx *gin.Context, response interface{}, statusCode int) {
	LogMessageWithFields(ctx, "info", "Returning response")
	if response == nil {
		ctx.Status(statusCode)
		return
	}
	ctx.JSON(statusCode, response)
}

// WriteAndLogError logs the provided error and sends an error response with the specified status code and error details.
// The cause is only logged, clients never see it.
func WriteAndLogError(ctx *gin.Context, customErr *goerrors.CustomError, statusCode int, err error) {
	LogMessageWithFields(ctx, "error", "Error occurred: "+err.Error())
	LogMessageWithFields(ctx, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	errorDto := &schemas.ErrorDTO{
		Message: customErr.Message,
		Code:    customErr.Code,
	}
	ctx.AbortWithStatusJSON(statusCode, errorDto)
}

// WriteServiceError maps an error returned by a service to its catalog entry and writes it.
func WriteServiceError(ctx *gin.Context, err error) {
	customErr := goerrors.From(err)
	WriteAndLogError(ctx, customErr, customErr.HttpStatus, err)
}
