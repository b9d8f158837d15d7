package checker

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// queryTimeout bounds each verification query. A scenario should
// fail on a slow database rather than hang past its own schedule.
const queryTimeout = 10 * time.Second

// PostgresChecker validates imported inventory state with direct
// single-value queries, like row counts over datasets and trees.
type PostgresChecker struct {
	db     *sql.DB
	logger *log.Logger
}

// NewPostgresChecker opens an independent database connection for
// verification queries.
func NewPostgresChecker(connStr string, logger *log.Logger) (*PostgresChecker, error) {
	if logger == nil {
		logger = log.Default()
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &PostgresChecker{db: db, logger: logger}, nil
}

// CheckQuery runs a query that returns a single value and compares
// it against the expectation. Expected values of the form "~N"
// accept a 20% tolerance, everything else must match exactly.
func (p *PostgresChecker) CheckQuery(ctx context.Context, query string, expected interface{}) error {
	p.logger.Printf("Executing query: %s", query)

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var result interface{}
	if err := p.db.QueryRowContext(ctx, query).Scan(&result); err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	p.logger.Printf("Query result: %v (expected: %v)", result, expected)

	return p.compareResults(result, expected)
}

func (p *PostgresChecker) compareResults(actual, expected interface{}) error {
	// Text columns scan into []byte.
	if b, ok := actual.([]byte); ok {
		actual = string(b)
	}

	if expectedStr, ok := expected.(string); ok && strings.HasPrefix(expectedStr, "~") {
		return p.compareApproximate(actual, expectedStr)
	}

	actualStr := fmt.Sprintf("%v", actual)
	expectedStr := fmt.Sprintf("%v", expected)

	if actualStr == expectedStr {
		return nil
	}

	return fmt.Errorf("mismatch: expected %v, got %v", expected, actual)
}

func (p *PostgresChecker) compareApproximate(actual interface{}, expectedStr string) error {
	targetStr := strings.TrimPrefix(expectedStr, "~")
	target, err := strconv.ParseFloat(targetStr, 64)
	if err != nil {
		return fmt.Errorf("invalid approximate value: %s", expectedStr)
	}

	actualFloat, err := toFloat64(actual)
	if err != nil {
		return fmt.Errorf("cannot convert actual value to number: %v", actual)
	}

	tolerance := target * 0.2
	if actualFloat >= target-tolerance && actualFloat <= target+tolerance {
		return nil
	}

	return fmt.Errorf("value %.2f not within 20%% of %.0f", actualFloat, target)
}

// Close closes the database connection
func (p *PostgresChecker) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}
