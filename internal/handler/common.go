package handler

import (
	"portal/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// IDResponse is returned by create endpoints.
type IDResponse struct {
	Message string    `json:"message"`
	ID      uuid.UUID `json:"id"`
}

// bindError wraps a binding failure as a validation error with the endpoint's message.
func bindError(c *gin.Context, msg string, err error) {
	c.Error(apperr.Wrap(apperr.KindValidation, msg, err))
}

// pathID parses the :id parameter. A malformed id answers with notFoundMsg.
func pathID(c *gin.Context, notFoundMsg string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperr.NotFound(notFoundMsg))
		return uuid.Nil, false
	}
	return id, true
}
