package mqtt

import "testing"

func TestTopicConstruction(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		want  string
	}{
		{"frame", FrameTopic("helsinki-trees"), "canopy/frame/helsinki-trees"},
		{"control", ControlTopic("helsinki-trees"), "canopy/control/helsinki-trees"},
		{"state", StateTopic("elm-park"), "canopy/state/elm-park"},
		{"descriptor", DescriptorTopic("elm-park"), "canopy/descriptor/elm-park"},
	}

	for _, tt := range tests {
		if tt.topic != tt.want {
			t.Errorf("%s topic = %q, want %q", tt.name, tt.topic, tt.want)
		}
	}
}

func TestDatasetFromTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{FrameTopic("helsinki-trees"), "helsinki-trees"},
		{ControlTopic("elm-park"), "elm-park"},
		{"canopy/frame", ""},
		{"telemetry/frame/helsinki-trees", ""},
		{"canopy/frame/a/b", ""},
	}

	for _, tt := range tests {
		if got := DatasetFromTopic(tt.topic); got != tt.want {
			t.Errorf("DatasetFromTopic(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}
