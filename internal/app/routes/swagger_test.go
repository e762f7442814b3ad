package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

var pathParam = regexp.MustCompile(`:(\w+)`)

func TestSwaggerServesDoc(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupSwagger(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "CampusHub API")
	assert.Contains(t, w.Body.String(), "BearerAuth")
}

func TestEveryRouteIsDocumented(t *testing.T) {
	doc, err := swag.ReadDoc()
	require.NoError(t, err)

	var spec struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &spec))

	documented := 0
	for _, route := range newTestRouter().Routes() {
		path := pathParam.ReplaceAllString(route.Path, "{${1}}")
		ops, ok := spec.Paths[path]
		if !assert.True(t, ok, "path %s is not documented", path) {
			continue
		}
		assert.Contains(t, ops, strings.ToLower(route.Method), "%s %s is not documented", route.Method, path)
		documented++
	}
	assert.Positive(t, documented)
}
