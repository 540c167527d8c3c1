// Package viewer maps named keys and mouse clicks onto scene operations for
// the interactive viewer. It has no windowing dependency.
package viewer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownAction is returned for an action name ParseAction does not know.
var ErrUnknownAction = errors.New("unknown viewer action")

// Action is one user command.
type Action int

const (
	ActionNone Action = iota

	CameraForward
	CameraBack
	CameraLeft
	CameraRight
	CameraUp
	CameraDown
	CameraYawLeft
	CameraYawRight
	CameraPitchUp
	CameraPitchDown
	NextCamera

	ModelLeft
	ModelRight
	ModelUp
	ModelDown
	ModelNear
	ModelFar
	ModelYawLeft
	ModelYawRight
	ModelPitchUp
	ModelPitchDown
	ModelGrow
	ModelShrink
	NextModel
	RemoveModel
	ToggleTexture

	AmbientUp
	AmbientDown
	IntensityUp
	IntensityDown

	ToggleSelection
	ToggleTileGrid
	Screenshot
	Quit
)

var actionNames = map[Action]string{
	CameraForward:   "camera_forward",
	CameraBack:      "camera_back",
	CameraLeft:      "camera_left",
	CameraRight:     "camera_right",
	CameraUp:        "camera_up",
	CameraDown:      "camera_down",
	CameraYawLeft:   "camera_yaw_left",
	CameraYawRight:  "camera_yaw_right",
	CameraPitchUp:   "camera_pitch_up",
	CameraPitchDown: "camera_pitch_down",
	NextCamera:      "next_camera",
	ModelLeft:       "model_left",
	ModelRight:      "model_right",
	ModelUp:         "model_up",
	ModelDown:       "model_down",
	ModelNear:       "model_near",
	ModelFar:        "model_far",
	ModelYawLeft:    "model_yaw_left",
	ModelYawRight:   "model_yaw_right",
	ModelPitchUp:    "model_pitch_up",
	ModelPitchDown:  "model_pitch_down",
	ModelGrow:       "model_grow",
	ModelShrink:     "model_shrink",
	NextModel:       "next_model",
	RemoveModel:     "remove_model",
	ToggleTexture:   "toggle_texture",
	AmbientUp:       "ambient_up",
	AmbientDown:     "ambient_down",
	IntensityUp:     "intensity_up",
	IntensityDown:   "intensity_down",
	ToggleSelection: "toggle_selection",
	ToggleTileGrid:  "toggle_tile_grid",
	Screenshot:      "screenshot",
	Quit:            "quit",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

// ParseAction returns the action for a config name.
func ParseAction(name string) (Action, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "none" {
		return ActionNone, nil
	}
	for a, an := range actionNames {
		if an == n {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}
