package docs

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

var (
	renderMu  sync.Mutex
	renderers = map[string]*glamour.TermRenderer{}
)

// Style picks a glamour standard style from a theme name: "dark", "light", or anything else
// for plain output without colors.
func Style(theme string) string {
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "dark":
		return styles.DarkStyle
	case "light":
		return styles.LightStyle
	default:
		return styles.NoTTYStyle
	}
}

// Render formats md for a terminal. On renderer errors the markdown is returned unchanged.
func Render(md string, style string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}

	key := style + ":" + strconv.Itoa(width)
	renderMu.Lock()
	defer renderMu.Unlock()
	r := renderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		renderers[key] = rr
		r = rr
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
