package app

import "strings"

// Queries end up as span attributes on every repository call; collapse the
// builder's whitespace and cap the length so a full-roster insert does not
// bloat the trace payload.
const tracedQueryLimit = 512

func formatDBQueryForTrace(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) > tracedQueryLimit {
		return normalized[:tracedQueryLimit] + "..."
	}
	return normalized
}
