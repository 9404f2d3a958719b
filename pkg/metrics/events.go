package metrics

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// RecordEvent records a new event with a name and set of key-value pairs.
// Nil values are dropped.
func RecordEvent(ctx context.Context, eventName string, kvPairs map[string]interface{}) {
	nr, ok := ctx.Value(NewRelicContextKey).(*newrelic.Application)
	if !ok {
		return
	}

	filtered := make(map[string]interface{}, len(kvPairs))
	for k, v := range kvPairs {
		if v != nil {
			filtered[k] = v
		}
	}
	nr.RecordCustomEvent(eventName, filtered)
}
