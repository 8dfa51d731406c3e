package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func parseQuery(query string, defaultLimit int) Params {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c, defaultLimit)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		query string
		def   int
		want  Params
	}{
		{"defaults", "", CatalogLimit, Params{Limit: 20, Offset: 0}},
		{"inbox default", "", InboxLimit, Params{Limit: 50, Offset: 0}},
		{"explicit", "limit=5&offset=10", CatalogLimit, Params{Limit: 5, Offset: 10}},
		{"capped", "limit=1000", CatalogLimit, Params{Limit: MaxLimit, Offset: 0}},
		{"garbage", "limit=abc&offset=xyz", CatalogLimit, Params{Limit: 20, Offset: 0}},
		{"negative", "limit=-3&offset=-1", InboxLimit, Params{Limit: 50, Offset: 0}},
		{"zero limit", "limit=0", CatalogLimit, Params{Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseQuery(tt.query, tt.def); got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.query, got, tt.want)
			}
		})
	}
}
