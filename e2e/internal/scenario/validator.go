package scenario

import (
	"fmt"

	"github.com/foliolab/foliage-platform/pkg/schema"
)

// ValidateScenario performs validation checks on a loaded scenario
func ValidateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("scenario description is required")
	}

	if s.Setup.Dataset == "" {
		return fmt.Errorf("setup.dataset is required")
	}

	if err := validateEvents(s.Events); err != nil {
		return fmt.Errorf("events validation failed: %w", err)
	}

	if err := validateWaitPeriods(s.Wait); err != nil {
		return fmt.Errorf("wait periods validation failed: %w", err)
	}

	if err := validateExpectations(s.Expectations); err != nil {
		return fmt.Errorf("expectations validation failed: %w", err)
	}

	return nil
}

func validateEvents(events []ControlEvent) error {
	if len(events) == 0 {
		return fmt.Errorf("at least one event is required")
	}

	for i, event := range events {
		if event.Time < 0 {
			return fmt.Errorf("event %d: time cannot be negative", i)
		}

		if event.Description == "" {
			return fmt.Errorf("event %d: description is required", i)
		}

		switch event.Action {
		case schema.ActionPlay, schema.ActionPause, schema.ActionReset:
			// No value.
		case schema.ActionSeek:
			if event.Value < 1 || event.Value > 366 {
				return fmt.Errorf("event %d: seek value %g outside day range [1, 366]", i, event.Value)
			}
		case schema.ActionSpeed:
			if event.Value <= 0 {
				return fmt.Errorf("event %d: speed value must be positive, got %g", i, event.Value)
			}
		case "":
			return fmt.Errorf("event %d: action is required", i)
		default:
			return fmt.Errorf("event %d: unknown action %q", i, event.Action)
		}
	}

	return nil
}

func validateWaitPeriods(waits []WaitPeriod) error {
	for i, wait := range waits {
		if wait.Time < 0 {
			return fmt.Errorf("wait period %d: time cannot be negative", i)
		}

		if wait.Description == "" {
			return fmt.Errorf("wait period %d: description is required", i)
		}
	}

	return nil
}

func validateExpectations(expectations map[string][]Expectation) error {
	if len(expectations) == 0 {
		return fmt.Errorf("at least one expectation is required")
	}

	for layer, exps := range expectations {
		if layer == "" {
			return fmt.Errorf("expectation layer name cannot be empty")
		}

		for i, exp := range exps {
			if exp.Time < 0 {
				return fmt.Errorf("layer %s, expectation %d: time cannot be negative", layer, i)
			}

			forms := 0
			if exp.Topic != "" {
				forms++
				if len(exp.Payload) == 0 {
					return fmt.Errorf("layer %s, expectation %d: topic expectations require a payload", layer, i)
				}
			}
			if exp.RedisKey != "" {
				forms++
				// redis_field is optional: without it the check reads
				// the whole key, which is how clock state is stored.
				if exp.Expected == "" {
					return fmt.Errorf("layer %s, expectation %d: expected is required with redis_key", layer, i)
				}
			}
			if exp.RedisField != "" && exp.RedisKey == "" {
				return fmt.Errorf("layer %s, expectation %d: redis_field requires redis_key", layer, i)
			}
			if exp.PostgresQuery != "" {
				forms++
				if exp.PostgresExpected == nil {
					return fmt.Errorf("layer %s, expectation %d: postgres_expected is required with postgres_query", layer, i)
				}
			}

			if forms == 0 {
				return fmt.Errorf("layer %s, expectation %d: one of topic, redis_key or postgres_query is required", layer, i)
			}
			if forms > 1 {
				return fmt.Errorf("layer %s, expectation %d: topic, redis_key and postgres_query are mutually exclusive", layer, i)
			}
		}
	}

	return nil
}
