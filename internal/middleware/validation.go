package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"server-notes/internal/goerrors"
	"server-notes/internal/utils"
	"server-notes/internal/validators"
)

// ValidateAndSanitizeStruct binds the JSON body into a fresh T, strips markup from its text fields and validates it.
// The sanitized *T is stored in the context under utils.SanitizedPayloadKey.
func ValidateAndSanitizeStruct[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := new(T)
		if err := c.ShouldBindJSON(obj); err != nil {
			utils.WriteAndLogError(c, goerrors.BadRequest, http.StatusBadRequest, err)
			return
		}

		validator := validators.GetValidator()
		if err := validator.SanitizeData(obj); err != nil {
			utils.WriteAndLogError(c, goerrors.BadRequest, http.StatusBadRequest, err)
			return
		}

		if err := validator.Validate.Struct(obj); err != nil {
			utils.WriteAndLogError(c, goerrors.BadRequest, http.StatusBadRequest, err)
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Next()
	}
}
