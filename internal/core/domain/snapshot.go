package domain

// DateFormat is the layout for snapshot dates (ISO calendar date).
const DateFormat = "2006-01-02"

// Snapshot is a dated, immutable record of metric values. At most one
// snapshot exists per calendar date; re-recording a date replaces that
// date's entry only.
type Snapshot struct {
	// Date is the ISO date string ("2006-01-02") keying the snapshot.
	Date string

	// Metrics maps metric name to its value on that date.
	Metrics map[string]float64
}

// DeltaRecord is the signed difference between a current metric value
// and its value in the most recent strictly earlier snapshot.
type DeltaRecord struct {
	// Metric is the metric name.
	Metric string

	// Previous is the baseline value from the prior snapshot.
	Previous float64

	// Current is the value supplied for this run.
	Current float64

	// Delta is Current - Previous.
	Delta float64

	// ComparedTo is the date of the baseline snapshot.
	ComparedTo string
}
