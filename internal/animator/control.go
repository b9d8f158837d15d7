package animator

import (
	"encoding/json"
	"fmt"

	"github.com/foliolab/foliage-platform/internal/playback"
	"github.com/foliolab/foliage-platform/pkg/schema"
)

// parseControl decodes a control payload.
func parseControl(payload []byte) (*schema.ControlCommand, error) {
	var cmd schema.ControlCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return nil, fmt.Errorf("failed to parse control command: %w", err)
	}
	if cmd.Action == "" {
		return nil, fmt.Errorf("control command missing action")
	}
	return &cmd, nil
}

// applyControl mutates the clock for one command and reports whether
// the action was recognized. The clock normalizes bad values itself,
// so an out-of-range seek or speed never fails here.
func applyControl(clock *playback.Clock, cmd *schema.ControlCommand) bool {
	switch cmd.Action {
	case schema.ActionPlay:
		clock.Play()
	case schema.ActionPause:
		clock.Pause()
	case schema.ActionSeek:
		clock.Seek(cmd.Value)
	case schema.ActionSpeed:
		clock.SetSpeed(cmd.Value)
	case schema.ActionReset:
		clock.Reset()
	default:
		return false
	}
	return true
}
