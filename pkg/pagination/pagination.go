package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	CatalogLimit = 20
	InboxLimit   = 50
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination parameters
type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Parse extracts and validates limit/offset from query parameters.
// Missing or malformed values fall back to defaultLimit and 0; limit is capped at MaxLimit.
func Parse(c *gin.Context, defaultLimit int) Params {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < MinLimit {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}
