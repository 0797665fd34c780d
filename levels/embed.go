// Package levels embeds the built-in level files so the game runs without
// any external data.
package levels

import (
	"embed"

	"github.com/nchukanov/botwalk/internal/level"
)

//go:embed *.yaml
var FS embed.FS

// All returns the built-in levels, sorted by ID.
func All() ([]level.Level, error) {
	return level.LoadFS(FS)
}
