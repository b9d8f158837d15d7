package scenario

import (
	"strings"
	"testing"
)

const validScenario = `
name: pause-and-seek
description: Pause the clock and scrub to the maple peak
setup:
  dataset: helsinki-trees
events:
  - time: 1
    action: pause
    description: Freeze the clock
  - time: 2
    action: seek
    value: 288
    description: Jump to the peak
wait:
  - time: 4
    description: Let the forced frame arrive
expectations:
  frames:
    - time: 5
      topic: canopy/frame/helsinki-trees
      payload:
        playing: false
        doy: 288
  stored:
    - time: 5
      redis_key: "canopy:meta:helsinki-trees"
      redis_field: entity_count
      expected: ">0"
    - time: 5
      redis_key: "canopy:state:helsinki-trees"
      expected: '~"playing":false~'
`

func TestLoadScenarioFromBytes(t *testing.T) {
	s, err := LoadScenarioFromBytes([]byte(validScenario))
	if err != nil {
		t.Fatalf("LoadScenarioFromBytes() error = %v", err)
	}

	if s.Name != "pause-and-seek" {
		t.Errorf("Name = %q, want pause-and-seek", s.Name)
	}
	if s.Setup.Dataset != "helsinki-trees" {
		t.Errorf("Setup.Dataset = %q, want helsinki-trees", s.Setup.Dataset)
	}
	if len(s.Events) != 2 {
		t.Fatalf("len(Events) = %d, want 2", len(s.Events))
	}
	if s.Events[1].Action != "seek" || s.Events[1].Value != 288 {
		t.Errorf("Events[1] = %+v, want seek 288", s.Events[1])
	}
	if len(s.Expectations["frames"]) != 1 {
		t.Errorf("len(Expectations[frames]) = %d, want 1", len(s.Expectations["frames"]))
	}
	if got := s.Expectations["stored"][0].RedisField; got != "entity_count" {
		t.Errorf("stored expectation field = %q, want entity_count", got)
	}
	if got := s.Expectations["stored"][1].RedisField; got != "" {
		t.Errorf("whole-key expectation field = %q, want empty", got)
	}
}

func TestLoadScenarioFromBytesInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "not yaml",
			yaml:    "events: [}",
			wantErr: "parse",
		},
		{
			name: "missing dataset",
			yaml: `
name: x
description: y
setup: {}
events:
  - {time: 1, action: play, description: go}
expectations:
  a:
    - {time: 2, topic: t, payload: {doy: 1}}
`,
			wantErr: "setup.dataset",
		},
		{
			name: "unknown action",
			yaml: `
name: x
description: y
setup: {dataset: d}
events:
  - {time: 1, action: rewind, description: go}
expectations:
  a:
    - {time: 2, topic: t, payload: {doy: 1}}
`,
			wantErr: "unknown action",
		},
		{
			name: "seek out of range",
			yaml: `
name: x
description: y
setup: {dataset: d}
events:
  - {time: 1, action: seek, value: 400, description: go}
expectations:
  a:
    - {time: 2, topic: t, payload: {doy: 1}}
`,
			wantErr: "seek value",
		},
		{
			name: "speed not positive",
			yaml: `
name: x
description: y
setup: {dataset: d}
events:
  - {time: 1, action: speed, value: 0, description: go}
expectations:
  a:
    - {time: 2, topic: t, payload: {doy: 1}}
`,
			wantErr: "speed value",
		},
		{
			name: "no events",
			yaml: `
name: x
description: y
setup: {dataset: d}
expectations:
  a:
    - {time: 2, topic: t, payload: {doy: 1}}
`,
			wantErr: "at least one event",
		},
		{
			name: "no expectations",
			yaml: `
name: x
description: y
setup: {dataset: d}
events:
  - {time: 1, action: play, description: go}
`,
			wantErr: "at least one expectation",
		},
		{
			name: "expectation without form",
			yaml: `
name: x
description: y
setup: {dataset: d}
events:
  - {time: 1, action: play, description: go}
expectations:
  a:
    - {time: 2}
`,
			wantErr: "one of topic",
		},
		{
			name: "expectation with two forms",
			yaml: `
name: x
description: y
setup: {dataset: d}
events:
  - {time: 1, action: play, description: go}
expectations:
  a:
    - {time: 2, topic: t, payload: {doy: 1}, redis_key: k, redis_field: f, expected: v}
`,
			wantErr: "mutually exclusive",
		},
		{
			name: "redis field without key",
			yaml: `
name: x
description: y
setup: {dataset: d}
events:
  - {time: 1, action: play, description: go}
expectations:
  a:
    - {time: 2, redis_field: f, expected: v}
`,
			wantErr: "redis_field requires redis_key",
		},
		{
			name: "redis without expected",
			yaml: `
name: x
description: y
setup: {dataset: d}
events:
  - {time: 1, action: play, description: go}
expectations:
  a:
    - {time: 2, redis_key: k}
`,
			wantErr: "expected is required",
		},
		{
			name: "postgres without expected",
			yaml: `
name: x
description: y
setup: {dataset: d}
events:
  - {time: 1, action: play, description: go}
expectations:
  a:
    - {time: 2, postgres_query: "SELECT 1"}
`,
			wantErr: "postgres_expected",
		},
		{
			name: "negative event time",
			yaml: `
name: x
description: y
setup: {dataset: d}
events:
  - {time: -1, action: play, description: go}
expectations:
  a:
    - {time: 2, topic: t, payload: {doy: 1}}
`,
			wantErr: "negative",
		},
		{
			name: "event without description",
			yaml: `
name: x
description: y
setup: {dataset: d}
events:
  - {time: 1, action: play}
expectations:
  a:
    - {time: 2, topic: t, payload: {doy: 1}}
`,
			wantErr: "description is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenarioFromBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatalf("LoadScenarioFromBytes() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
