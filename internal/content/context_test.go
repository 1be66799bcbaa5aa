package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

func TestContext_BasicFields(t *testing.T) {
	ctx, err := Context(config.SiteConfig{
		Title:     "Tratamiento de Conductos (Endodoncia)",
		Phone:     "+56 9 4160 3277",
		PhoneLink: "tel:+56941603277",
		Address:   "Av. Las Condes 10465 oficina 116, Las Condes",
		Hero: config.HeroConfig{
			Title:    "Tratamiento de Conductos",
			Subtitle: "Atención precisa y cómoda",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Tratamiento de Conductos (Endodoncia)", ctx["site_title"])
	assert.Equal(t, "tel:+56941603277", ctx["site_phone_link"])
	assert.Equal(t, "Tratamiento de Conductos", ctx["hero_title"])
}

func TestContext_ServicesCarrySlugURLAndRenderedSummary(t *testing.T) {
	ctx, err := Context(config.SiteConfig{
		Title: "Site",
		Services: []config.Service{
			{Title: "Trauma Dental", Slug: "dental-trauma", Summary: "Atención de **urgencia**."},
		},
	})
	require.NoError(t, err)

	services, ok := ctx["services"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, services, 1)

	assert.Equal(t, "/dental-trauma/", services[0]["url"])
	summary := services[0]["summary"].(interface{ String() string }).String()
	assert.Contains(t, summary, "<strong>urgencia</strong>")
}

func TestContext_StringsMergedAtTopLevel(t *testing.T) {
	ctx, err := Context(config.SiteConfig{
		Title:   "Site",
		Strings: map[string]string{"cta_appointment": "Solicitar Cita"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Solicitar Cita", ctx["cta_appointment"])
}

func TestContext_StringsCannotShadowBuiltins(t *testing.T) {
	_, err := Context(config.SiteConfig{
		Title:   "Site",
		Strings: map[string]string{"site_title": "override"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shadows")
}

func TestContext_SpecialistOptional(t *testing.T) {
	ctx, err := Context(config.SiteConfig{Title: "Site"})
	require.NoError(t, err)
	_, present := ctx["specialist"]
	assert.False(t, present)
}
