package rdesc

import "encoding/json"

type Act string

const (
	ActSeedSet    Act = "seed_set"
	ActSampleSet  Act = "sample_set"
	ActChurnSet   Act = "churn_set"
	ActReplaceSet Act = "replace_set"
)

// Rule describes a rule to be run. Can be serialized and deserialized to/from JSON.
type Rule struct {
	// Name of the rule
	Act Act
	// Interval to run the rule. If not set, the rule will be run once.
	// Format:
	// - "random(5,10)" - run the rule randomly every 5-10 seconds
	Periodic string
	// Arguments passed to the rule constructor
	Args json.RawMessage
	// Timeout for a single rule execution.
	Timeout *Duration
}
