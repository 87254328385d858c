// Package scenario defines named batch presets loaded from YAML.
package scenario

import "embed"

//go:embed builtin/*.yaml
var builtinFS embed.FS
