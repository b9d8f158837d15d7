package executor

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/foliolab/foliage-platform/e2e/internal/checker"
	"github.com/foliolab/foliage-platform/e2e/internal/observer"
	"github.com/foliolab/foliage-platform/e2e/internal/reporter"
	"github.com/foliolab/foliage-platform/e2e/internal/scenario"
	"github.com/foliolab/foliage-platform/pkg/mqtt"
)

// startupSettle is how long the runner waits before observing, so
// an agent started alongside the test has published its retained
// descriptor and state.
const startupSettle = 5 * time.Second

// Runner orchestrates test scenario execution
type Runner struct {
	mqttBroker   string
	redisAddr    string
	postgresConn string
	logger       *log.Logger

	observer    *observer.Observer
	player      *ControlPlayer
	redisClient *redis.Client
	pgChecker   *checker.PostgresChecker
}

// NewRunner creates a test runner. postgresConn may be empty, in
// which case postgres expectations fail with a clear reason
// instead of being silently skipped.
func NewRunner(mqttBroker, redisAddr, postgresConn string, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		mqttBroker:   mqttBroker,
		redisAddr:    redisAddr,
		postgresConn: postgresConn,
		logger:       logger,
	}
}

// Run executes a test scenario
func (r *Runner) Run(ctx context.Context, s *scenario.Scenario) (*scenario.TestResult, []reporter.TimelineEvent, error) {
	r.logger.Printf("Starting scenario: %s", s.Name)
	r.logger.Printf("Description: %s", s.Description)
	r.logger.Printf("Dataset under test: %s", s.Setup.Dataset)

	if err := r.initialize(); err != nil {
		return nil, nil, fmt.Errorf("initialization failed: %w", err)
	}
	defer r.cleanup()

	r.logger.Printf("Waiting %s for the agent to settle...", startupSettle)
	time.Sleep(startupSettle)

	if err := r.observer.Start(); err != nil {
		return nil, nil, fmt.Errorf("failed to start observer: %w", err)
	}

	r.logDatasetMeta(ctx, s.Setup.Dataset)

	origin := s.Setup.Origin
	if origin == "" {
		origin = "e2e"
	}

	startTime := time.Now()
	var timelineEvents []reporter.TimelineEvent

	// Publish control commands on schedule
	for _, event := range s.Events {
		if err := WaitUntil(ctx, startTime, event.Time); err != nil {
			return nil, nil, fmt.Errorf("scenario cancelled: %w", err)
		}
		elapsed := GetElapsed(startTime)

		eventDesc := fmt.Sprintf("%s (%s)", event.Action, event.Description)
		if event.Value != 0 {
			eventDesc = fmt.Sprintf("%s %g (%s)", event.Action, event.Value, event.Description)
		}

		r.logger.Printf("[%.2fs] Publishing command: %s", elapsed, eventDesc)

		if err := r.player.PublishControl(s.Setup.Dataset, origin, event); err != nil {
			return nil, nil, fmt.Errorf("failed to publish command: %w", err)
		}

		timelineEvents = append(timelineEvents, reporter.TimelineEvent{
			Elapsed:     elapsed,
			Layer:       "control",
			Description: eventDesc,
			IsCheck:     false,
		})
	}

	// Execute wait periods
	for _, wait := range s.Wait {
		if err := WaitUntil(ctx, startTime, wait.Time); err != nil {
			return nil, nil, fmt.Errorf("scenario cancelled: %w", err)
		}
		elapsed := GetElapsed(startTime)

		r.logger.Printf("[%.2fs] Wait: %s", elapsed, wait.Description)

		timelineEvents = append(timelineEvents, reporter.TimelineEvent{
			Elapsed:     elapsed,
			Layer:       "wait",
			Description: wait.Description,
			IsCheck:     false,
		})
	}

	// Flatten expectations and check them in timeline order
	type layerExp struct {
		layer string
		exp   scenario.Expectation
	}
	var allExpectations []layerExp
	for layer, exps := range s.Expectations {
		for _, exp := range exps {
			allExpectations = append(allExpectations, layerExp{layer, exp})
		}
	}
	sort.SliceStable(allExpectations, func(i, j int) bool {
		return allExpectations[i].exp.Time < allExpectations[j].exp.Time
	})

	var expectationResults []scenario.ExpectationResult

	for _, le := range allExpectations {
		if err := WaitUntil(ctx, startTime, le.exp.Time); err != nil {
			return nil, nil, fmt.Errorf("scenario cancelled: %w", err)
		}
		elapsed := GetElapsed(startTime)

		checkDesc := describeExpectation(le.exp)
		r.logger.Printf("[%.2fs] Checking expectation: %s - %s", elapsed, le.layer, checkDesc)

		var passed bool
		var reason string
		var actual interface{}

		switch {
		case le.exp.PostgresQuery != "":
			passed, reason, actual = r.checkPostgres(ctx, le.exp)
		case le.exp.RedisKey != "":
			passed, reason, actual = checker.CheckRedis(ctx, r.redisClient, le.exp)
		default:
			messages := r.observer.GetMessagesByTopic(le.exp.Topic)
			passed, reason, actual = checker.CheckMessage(le.exp, messages)
		}

		expectationResults = append(expectationResults, scenario.ExpectationResult{
			Layer:       le.layer,
			Expectation: le.exp,
			Passed:      passed,
			Reason:      reason,
			Actual:      actual,
		})

		if passed {
			r.logger.Printf("[%.2fs] ✓ PASS", elapsed)
		} else {
			r.logger.Printf("[%.2fs] ✗ FAIL: %s", elapsed, reason)
		}

		timelineEvents = append(timelineEvents, reporter.TimelineEvent{
			Elapsed:     elapsed,
			Layer:       le.layer,
			Description: checkDesc,
			Success:     passed,
			IsCheck:     true,
		})
	}

	endTime := time.Now()

	passedCount := 0
	failedCount := 0
	for _, result := range expectationResults {
		if result.Passed {
			passedCount++
		} else {
			failedCount++
		}
	}

	testResult := &scenario.TestResult{
		Scenario:     s,
		StartTime:    startTime,
		EndTime:      endTime,
		Passed:       failedCount == 0,
		PassedCount:  passedCount,
		FailedCount:  failedCount,
		Expectations: expectationResults,
	}

	return testResult, timelineEvents, nil
}

// logDatasetMeta prints the agent's stored dataset metadata so the
// test log records which session and entity count was under test.
func (r *Runner) logDatasetMeta(ctx context.Context, dataset string) {
	key := fmt.Sprintf("canopy:meta:%s", dataset)
	fields, err := r.redisClient.HGetAll(ctx, key).Result()
	if err != nil || len(fields) == 0 {
		r.logger.Printf("No stored metadata at %s yet", key)
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.logger.Printf("Meta %s = %s", k, fields[k])
	}
}

// checkPostgres routes a query expectation to the checker
func (r *Runner) checkPostgres(ctx context.Context, exp scenario.Expectation) (bool, string, interface{}) {
	if r.pgChecker == nil {
		return false, "postgres checker not configured, pass a connection string", nil
	}

	if err := r.pgChecker.CheckQuery(ctx, exp.PostgresQuery, exp.PostgresExpected); err != nil {
		return false, fmt.Sprintf("postgres check failed: %v", err), nil
	}

	return true, "", exp.PostgresExpected
}

// describeExpectation produces the short label used in logs and
// timeline reports.
func describeExpectation(exp scenario.Expectation) string {
	switch {
	case exp.Topic != "":
		return exp.Topic
	case exp.RedisKey != "" && exp.RedisField != "":
		return fmt.Sprintf("redis %s.%s", exp.RedisKey, exp.RedisField)
	case exp.RedisKey != "":
		return fmt.Sprintf("redis %s", exp.RedisKey)
	case exp.PostgresQuery != "":
		return "postgres query"
	default:
		return "empty expectation"
	}
}

// initialize sets up connections
func (r *Runner) initialize() error {
	r.observer = observer.NewObserver(r.mqttBroker, mqtt.TopicCanopyAll, r.logger)

	player, err := NewControlPlayer(r.mqttBroker, r.logger)
	if err != nil {
		return fmt.Errorf("failed to create control player: %w", err)
	}
	r.player = player

	r.redisClient = redis.NewClient(&redis.Options{
		Addr: r.redisAddr,
	})

	ctx := context.Background()
	if err := r.redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	r.logger.Printf("Connected to Redis at %s", r.redisAddr)

	if r.postgresConn != "" {
		pgChecker, err := checker.NewPostgresChecker(r.postgresConn, r.logger)
		if err != nil {
			return fmt.Errorf("failed to create Postgres checker: %w", err)
		}
		r.pgChecker = pgChecker
		r.logger.Printf("Connected to Postgres")
	}

	return nil
}

// cleanup closes all connections
func (r *Runner) cleanup() {
	if r.observer != nil {
		r.observer.Stop()
	}
	if r.player != nil {
		r.player.Close()
	}
	if r.redisClient != nil {
		r.redisClient.Close()
	}
	if r.pgChecker != nil {
		r.pgChecker.Close()
	}
}

// SaveCapture saves the MQTT capture to a file
func (r *Runner) SaveCapture(filename string) error {
	if r.observer == nil {
		return fmt.Errorf("observer not initialized")
	}
	return r.observer.SaveCapture(filename)
}
