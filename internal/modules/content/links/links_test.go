package links

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anish3d/folio/internal/pkg/notion"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct{ pages []notion.Page }

func (f fakeQuerier) QueryDatabase(context.Context, string) ([]notion.Page, error) {
	return f.pages, nil
}

const linkRecords = `[
  {"object":"page","id":"l1","properties":{
    "Name":{"type":"title","title":[{"plain_text":"GitHub"}]},
    "Direct Link":{"type":"url","url":"https://github.com/anish3d"},
    "Link Type":{"type":"select","select":{"name":"social"}}}},
  {"object":"page","id":"l2","properties":{"Direct Link":{"type":"url","url":null}}}
]`

func TestList(t *testing.T) {
	var pages []notion.Page
	require.NoError(t, json.Unmarshal([]byte(linkRecords), &pages))

	items, err := NewService(fakeQuerier{pages: pages}, "db", nil).List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "GitHub", items[0].Name)
	assert.Equal(t, "https://github.com/anish3d", items[0].DirectLink)
	assert.Equal(t, "social", items[0].LinkType)
	assert.Equal(t, "", items[1].Name)
	assert.Equal(t, "", items[1].DirectLink)
}

func TestHandler_NotConfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(fakeQuerier{}, "", nil)).RegisterRoutes(r.Group("/api"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notion", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
