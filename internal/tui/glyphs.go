package tui

import (
	"os"
	"strings"
	"sync/atomic"
)

type glyphTable struct {
	handle string
	hrule  string
	done   string
	rng    string
}

var (
	unicodeGlyphs = glyphTable{handle: "⠿", hrule: "─", done: "✓", rng: "→"}
	// Some fonts render braille and box-drawing glyphs badly.
	asciiGlyphs = glyphTable{handle: ":", hrule: "-", done: "x", rng: "->"}

	activeGlyphs atomic.Pointer[glyphTable]
)

// applyGlyphPreference reads TASKTREE_TUI_GLYPHS (unicode|ascii). Unknown values keep the
// current table.
func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("TASKTREE_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		activeGlyphs.Store(&unicodeGlyphs)
	case "ascii":
		activeGlyphs.Store(&asciiGlyphs)
	}
}

func glyphs() *glyphTable {
	if g := activeGlyphs.Load(); g != nil {
		return g
	}
	return &unicodeGlyphs
}

func glyphHandle() string { return glyphs().handle }
func glyphHRule() string  { return glyphs().hrule }
func glyphDone() string   { return glyphs().done }
func glyphRange() string  { return glyphs().rng }
