package checker

import (
	"fmt"

	"github.com/foliolab/foliage-platform/e2e/internal/observer"
	"github.com/foliolab/foliage-platform/e2e/internal/scenario"
)

// CheckMessage validates a topic expectation against the messages
// captured on that topic. The newest message is the one checked:
// frames and state supersede each other, so only the latest
// reflects the clock at check time.
func CheckMessage(exp scenario.Expectation, messages []observer.CapturedMessage) (bool, string, interface{}) {
	if len(messages) == 0 {
		return false, fmt.Sprintf("no messages observed on topic %q", exp.Topic), nil
	}

	latest := messages[len(messages)-1]

	payloadMap, ok := latest.Payload.(map[string]interface{})
	if !ok {
		return false, fmt.Sprintf("payload is not a JSON object, got %T", latest.Payload), latest.Payload
	}

	matches, reason := MatchValue(payloadMap, exp.Payload)
	if !matches {
		return false, reason, latest.Payload
	}

	return true, "", latest.Payload
}
