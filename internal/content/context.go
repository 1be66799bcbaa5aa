// Package content assembles the template context from the site configuration.
//
// Copy fields that may contain markdown (service summaries, the specialist
// bio) are converted to HTML with goldmark and marked safe so the template
// engine's autoescaping leaves them intact.
package content

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// reserved keys that user strings must not shadow.
var reservedKeys = map[string]bool{
	"site_title":      true,
	"site_phone":      true,
	"site_phone_link": true,
	"site_address":    true,
	"hero_title":      true,
	"hero_subtitle":   true,
	"menu":            true,
	"services":        true,
	"specialist":      true,
}

// Context builds the pongo2 context shared by every page.
func Context(site config.SiteConfig) (pongo2.Context, error) {
	ctx := pongo2.Context{
		"site_title":      site.Title,
		"site_phone":      site.Phone,
		"site_phone_link": site.PhoneLink,
		"site_address":    site.Address,
		"hero_title":      site.Hero.Title,
		"hero_subtitle":   site.Hero.Subtitle,
	}

	menu := make([]map[string]any, 0, len(site.Menu))
	for _, item := range site.Menu {
		menu = append(menu, map[string]any{
			"label": item.Label,
			"url":   item.URL,
		})
	}
	ctx["menu"] = menu

	services := make([]map[string]any, 0, len(site.Services))
	for _, svc := range site.Services {
		summary, err := markdownValue(svc.Summary)
		if err != nil {
			return nil, fmt.Errorf("service %q summary: %w", svc.Slug, err)
		}
		services = append(services, map[string]any{
			"title":   svc.Title,
			"slug":    svc.Slug,
			"url":     "/" + strings.Trim(svc.Slug, "/") + "/",
			"summary": summary,
		})
	}
	ctx["services"] = services

	if site.Specialist != nil {
		bio, err := markdownValue(site.Specialist.Bio)
		if err != nil {
			return nil, fmt.Errorf("specialist bio: %w", err)
		}
		ctx["specialist"] = map[string]any{
			"name":  site.Specialist.Name,
			"title": site.Specialist.Title,
			"bio":   bio,
		}
	}

	for key, value := range site.Strings {
		if reservedKeys[key] {
			return nil, fmt.Errorf("strings key %q shadows a built-in context value", key)
		}
		ctx[key] = value
	}

	return ctx, nil
}

// markdownValue renders a markdown snippet to HTML marked safe for templates.
// Empty input stays an empty (unsafe) value so templates can test for it.
func markdownValue(src string) (*pongo2.Value, error) {
	if strings.TrimSpace(src) == "" {
		return pongo2.AsValue(""), nil
	}
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(src), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return pongo2.AsSafeValue(strings.TrimSpace(buf.String())), nil
}
