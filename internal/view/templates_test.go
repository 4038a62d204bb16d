package view

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webhooks-analytics/console/internal/theme"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestNavigationMarksActive(t *testing.T) {
	items := Navigation("/partners/Acme CRM")
	require.Len(t, items, 9)
	assert.Equal(t, "Schemas", items[2].Label)
	for _, item := range items {
		assert.Equal(t, item.Href == "/partners", item.Active, item.Href)
	}
	assert.True(t, Navigation("/")[0].Active)
	assert.False(t, Navigation("/ingestion")[0].Active)
}

func TestRenderAppliesThemeClass(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, engine.Render(rec, "pages/alerts.html", TemplateData{
		Title:       "Alerts",
		CurrentPath: "/alerts",
		Theme:       theme.Dark,
		Data:        map[string]any{"Alerts": nil},
	}))
	body := rec.Body.String()
	assert.Contains(t, body, `<html lang="en" class="dark">`)
	assert.Contains(t, body, "Light mode")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	assert.Error(t, engine.Render(rec, "pages/missing.html", TemplateData{}))
	assert.Zero(t, rec.Body.Len())
}
