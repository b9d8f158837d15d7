package scenario

import "time"

// Scenario is one end-to-end test: timed transport commands played
// against a running animator, then expectations checked against the
// observed MQTT traffic and the stored state.
type Scenario struct {
	Name         string                   `yaml:"name"`
	Description  string                   `yaml:"description"`
	Setup        SetupConfig              `yaml:"setup"`
	Events       []ControlEvent           `yaml:"events"`
	Wait         []WaitPeriod             `yaml:"wait"`
	Expectations map[string][]Expectation `yaml:"expectations"`
}

// SetupConfig identifies the animator under test
type SetupConfig struct {
	Dataset string `yaml:"dataset"`
	Origin  string `yaml:"origin,omitempty"` // command source label, defaults to "e2e"
}

// ControlEvent is one transport command to publish during the test
type ControlEvent struct {
	Time        int     `yaml:"time"` // Seconds from start
	Action      string  `yaml:"action"`
	Value       float64 `yaml:"value,omitempty"` // Seek day or speed multiplier
	Description string  `yaml:"description"`
}

// WaitPeriod represents a pause in the scenario
type WaitPeriod struct {
	Time        int    `yaml:"time"` // Seconds from start
	Description string `yaml:"description"`
}

// Expectation is one check to run at a point in the timeline. It
// takes exactly one of three forms: an MQTT payload check against
// the latest message on a topic, a Redis check, or a single-value
// Postgres query check.
type Expectation struct {
	Time int `yaml:"time"` // Seconds from start

	// MQTT form
	Topic   string                 `yaml:"topic,omitempty"`
	Payload map[string]interface{} `yaml:"payload,omitempty"`

	// Redis form. With redis_field the check reads a hash field;
	// without it the whole key, which is where clock state lives.
	RedisKey   string `yaml:"redis_key,omitempty"`
	RedisField string `yaml:"redis_field,omitempty"`
	Expected   string `yaml:"expected,omitempty"`

	// Postgres form
	PostgresQuery    string      `yaml:"postgres_query,omitempty"`
	PostgresExpected interface{} `yaml:"postgres_expected,omitempty"`
}

// TestResult represents the outcome of running a scenario
type TestResult struct {
	Scenario     *Scenario
	StartTime    time.Time
	EndTime      time.Time
	Passed       bool
	PassedCount  int
	FailedCount  int
	Expectations []ExpectationResult
}

// ExpectationResult represents the result of checking a single expectation
type ExpectationResult struct {
	Layer       string
	Expectation Expectation
	Passed      bool
	Reason      string
	Actual      interface{}
}
