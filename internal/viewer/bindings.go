package viewer

import (
	"fmt"
	"strings"
)

// Bindings maps key names, compared case-insensitively, to actions.
type Bindings map[string]Action

// DefaultBindings returns the stock key map. Names follow SDL scancode names.
func DefaultBindings() Bindings {
	return Bindings{
		"w":      CameraForward,
		"s":      CameraBack,
		"a":      CameraLeft,
		"d":      CameraRight,
		"e":      CameraUp,
		"q":      CameraDown,
		"left":   CameraYawLeft,
		"right":  CameraYawRight,
		"up":     CameraPitchUp,
		"down":   CameraPitchDown,
		"c":      NextCamera,
		"j":      ModelLeft,
		"l":      ModelRight,
		"i":      ModelUp,
		"k":      ModelDown,
		"u":      ModelNear,
		"o":      ModelFar,
		"y":      ModelYawLeft,
		"h":      ModelYawRight,
		"n":      ModelPitchUp,
		"m":      ModelPitchDown,
		"=":      ModelGrow,
		"-":      ModelShrink,
		"tab":    NextModel,
		"delete": RemoveModel,
		"t":      ToggleTexture,
		"]":      AmbientUp,
		"[":      AmbientDown,
		".":      IntensityUp,
		",":      IntensityDown,
		"b":      ToggleSelection,
		"g":      ToggleTileGrid,
		"f12":    Screenshot,
		"escape": Quit,
	}
}

// Merge returns a copy of b with overrides applied. Mapping a key to "none"
// unbinds it.
func (b Bindings) Merge(overrides map[string]string) (Bindings, error) {
	out := make(Bindings, len(b)+len(overrides))
	for k, a := range b {
		out[k] = a
	}
	for key, name := range overrides {
		a, err := ParseAction(name)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		k := normalizeKey(key)
		if a == ActionNone {
			delete(out, k)
			continue
		}
		out[k] = a
	}
	return out, nil
}

// Lookup returns the action bound to a key name.
func (b Bindings) Lookup(key string) (Action, bool) {
	a, ok := b[normalizeKey(key)]
	return a, ok
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
