package metrics

const (
	// common prefix for all metric names
	prefix = "fairdiv_"

	// Prometheus Labels
	objectiveLabel = "objective"
	statusLabel    = "status"
	criterionLabel = "criterion"

	// status label value for solves that returned an error
	errored = "error"
)
