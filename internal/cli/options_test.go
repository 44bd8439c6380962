package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tasktree-cli/internal/dragintent"
	"tasktree-cli/internal/store"
	"tasktree-cli/internal/tui"
)

func floatp(v float64) *float64 { return &v }

func TestTUIEngineOptions_ConfiguredGeometryWins(t *testing.T) {
	scaled := tui.DragOptions(dragintent.DefaultOptions())

	_, d := tuiEngineOptions(store.EngineConfig{})
	assert.Equal(t, scaled, d)

	_, d = tuiEngineOptions(store.EngineConfig{UnnestMargin: floatp(5), HandleWidth: floatp(3)})
	assert.Equal(t, 5.0, d.UnnestMargin)
	assert.Equal(t, 3.0, d.HandleWidth)
	assert.Equal(t, scaled.NestBandLow, d.NestBandLow)

	_, d = tuiEngineOptions(store.EngineConfig{UnnestMargin: floatp(5)})
	assert.Equal(t, 5.0, d.UnnestMargin)
	assert.Equal(t, scaled.HandleWidth, d.HandleWidth)
}
