package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campushub/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		page, size         int
		wantOffset, wantLn uint64
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 0, 0, DefaultPageSize},
		{2, 1000, DefaultPageSize, DefaultPageSize},
	}
	for _, tt := range tests {
		off, lim := CalculateOffsetLimit(tt.page, tt.size)
		assert.Equal(t, tt.wantOffset, off, "page=%d size=%d", tt.page, tt.size)
		assert.Equal(t, tt.wantLn, lim, "page=%d size=%d", tt.page, tt.size)
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)

	empty := NewPaginationInfo(0, 1, 20)
	assert.Equal(t, 1, empty.TotalPages)

	clamped := NewPaginationInfo(5, 9, 20)
	assert.Equal(t, 1, clamped.CurrentPage)
}

func TestParsePaginationParams(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/admin/users?page=3&size=500", nil)

	page, size := ParsePaginationParams(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, DefaultPageSize, size)
}

func TestParseIDParam(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "id", Value: "17"}, {Key: "bad", Value: "-3"}}

	id, err := ParseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)

	_, err = ParseIDParam(c, "bad")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestParseOptionalBoolQuery(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?active=false&broken=nah", nil)

	v, err := ParseOptionalBoolQuery(c, "active")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.False(t, *v)

	missing, err := ParseOptionalBoolQuery(c, "verified")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = ParseOptionalBoolQuery(c, "broken")
	assert.Error(t, err)
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" AI ", "ai", "", "Robotics", "robotics ", "web"})
	assert.Equal(t, []string{"AI", "Robotics", "web"}, got)
}

func TestFoldHelpers(t *testing.T) {
	assert.True(t, ContainsFold("Spring Hackathon 2025", "HACK"))
	assert.False(t, ContainsFold("Career Fair", "hack"))
	assert.True(t, HasTagFold([]string{"Go", "Cloud"}, "cloud"))
	assert.False(t, HasTagFold(nil, "cloud"))
	assert.Equal(t, "a@b.co", NormalizeEmail("  A@B.co "))
	assert.Nil(t, NilIfBlank("   "))
	assert.Equal(t, "", StringOrEmpty(nil))
}
