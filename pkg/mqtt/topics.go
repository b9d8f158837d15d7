package mqtt

import (
	"fmt"
	"strings"
)

// Topic constants for the canopy message scheme
const (
	// All canopy traffic
	TopicCanopyAll = "canopy/#"

	// Per-kind wildcards across datasets
	TopicAllFrames      = "canopy/frame/+"
	TopicAllControl     = "canopy/control/+"
	TopicAllState       = "canopy/state/+"
	TopicAllDescriptors = "canopy/descriptor/+"
)

// FrameTopic constructs the frame stream topic for a dataset
// Pattern: canopy/frame/{dataset}
func FrameTopic(dataset string) string {
	return fmt.Sprintf("canopy/frame/%s", dataset)
}

// ControlTopic constructs the transport command topic for a dataset
// Pattern: canopy/control/{dataset}
func ControlTopic(dataset string) string {
	return fmt.Sprintf("canopy/control/%s", dataset)
}

// StateTopic constructs the retained clock state topic for a dataset
// Pattern: canopy/state/{dataset}
func StateTopic(dataset string) string {
	return fmt.Sprintf("canopy/state/%s", dataset)
}

// DescriptorTopic constructs the retained dataset descriptor topic
// Pattern: canopy/descriptor/{dataset}
func DescriptorTopic(dataset string) string {
	return fmt.Sprintf("canopy/descriptor/%s", dataset)
}

// DatasetFromTopic extracts the dataset segment from a canopy topic,
// empty string when the topic does not follow the scheme
func DatasetFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[0] != "canopy" {
		return ""
	}
	return parts[2]
}
