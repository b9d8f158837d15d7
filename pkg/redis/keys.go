package redis

import "fmt"

// Key construction helpers for the canopy keyspace

// StateKey returns the key for the latest clock state (string, JSON)
// Pattern: canopy:state:{dataset}
func StateKey(dataset string) string {
	return fmt.Sprintf("canopy:state:%s", dataset)
}

// MetaKey returns the key for dataset metadata (hash)
// Pattern: canopy:meta:{dataset}
func MetaKey(dataset string) string {
	return fmt.Sprintf("canopy:meta:%s", dataset)
}

// TimelineKey returns the key for the control event timeline (sorted set)
// Pattern: canopy:timeline:{dataset}
func TimelineKey(dataset string) string {
	return fmt.Sprintf("canopy:timeline:%s", dataset)
}

// ReportKey returns the key for the cached resolution report (string, JSON)
// Pattern: canopy:report:{dataset}
func ReportKey(dataset string) string {
	return fmt.Sprintf("canopy:report:%s", dataset)
}
