package templates

import (
	"net/url"
	"strings"
)

const htmxScript = "https://unpkg.com/htmx.org@2.0.4"

// PageContext provides shared layout context for console pages.
type PageContext struct {
	Lang         string
	Loc          Localizer
	CurrentPath  string
	CurrentQuery string
	Title        string
	Nav          []NavItem
	Languages    []LanguageOption
	Toasts       []Toast
}

// NavItem is one module entry of the sidebar.
type NavItem struct {
	Label  string
	URL    string
	Active bool
}

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Tag    string
	Label  string
	Active bool
}

// Toast is a rendered notification.
type Toast struct {
	// Kind is "success" or "error".
	Kind string
	Text string
}

// LanguageURL returns the current URL with the lang param set to tag.
func LanguageURL(page PageContext, tag string) string {
	values, err := url.ParseQuery(page.CurrentQuery)
	if err != nil {
		values = url.Values{}
	}
	values.Set("lang", tag)
	path := page.CurrentPath
	if path == "" {
		path = "/"
	}
	return path + "?" + values.Encode()
}

// ComposePageTitle appends the application name to title.
func ComposePageTitle(loc Localizer, title string) string {
	appName := T(loc, "core.app_name")
	title = strings.TrimSpace(title)
	if title == "" || title == appName {
		return appName
	}
	return title + " | " + appName
}

func pageLang(page PageContext) string {
	if page.Lang == "" {
		return "en-US"
	}
	return page.Lang
}

// Breadcrumb represents a single breadcrumb item.
type Breadcrumb struct {
	// Label is the visible label.
	Label string
	// URL is the optional navigation target.
	URL string
}
