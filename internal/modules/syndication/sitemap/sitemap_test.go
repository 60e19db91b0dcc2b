package sitemap

import (
	"context"
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anish3d/folio/internal/models"
	"github.com/anish3d/folio/internal/modules/content/notes"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticLister []models.Note

func (s staticLister) List(context.Context, notes.ListOptions) ([]models.Note, error) {
	return s, nil
}

type failingLister struct{}

func (failingLister) List(context.Context, notes.ListOptions) ([]models.Note, error) {
	return nil, errors.New("notion down")
}

func TestBuild(t *testing.T) {
	now := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	sections := []Section{
		{Lister: staticLister{
			{Slug: "a&b", LastEditedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
			{Slug: ""},
		}, PagePath: "/notes", Priority: 0.6},
		{Lister: staticLister{{Slug: "go lang", PublishedAt: "2023-07-09"}}, PagePath: "develop", ChangeFreq: "weekly", Priority: 0.8},
	}

	out, err := Build(context.Background(), "https://anish3d.com/", sections, now)
	require.NoError(t, err)

	var doc struct {
		URLs []struct {
			Loc        string `xml:"loc"`
			LastMod    string `xml:"lastmod"`
			ChangeFreq string `xml:"changefreq"`
		} `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.URLs, 3)
	assert.Equal(t, "https://anish3d.com/", doc.URLs[0].Loc)
	assert.Equal(t, "2024-03-05", doc.URLs[0].LastMod)
	assert.Equal(t, "https://anish3d.com/notes/a&b", doc.URLs[1].Loc)
	assert.Equal(t, "2024-02-01", doc.URLs[1].LastMod)
	assert.Equal(t, "monthly", doc.URLs[1].ChangeFreq)
	assert.Equal(t, "https://anish3d.com/develop/go%20lang", doc.URLs[2].Loc)
	assert.Equal(t, "2023-07-09", doc.URLs[2].LastMod)
	assert.Equal(t, "weekly", doc.URLs[2].ChangeFreq)
}

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, "https://x.test", []Section{{Lister: staticLister{{Slug: "a"}}, PagePath: "/notes"}}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<loc>https://x.test/notes/a</loc>")

	r = gin.New()
	RegisterRoutes(r, "https://x.test", []Section{{Lister: failingLister{}, PagePath: "/notes"}}, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sitemap", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
