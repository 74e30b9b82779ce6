package app

import (
	"net/url"
	"strings"
)

// normalizeDBURL applies the DB_DISABLE_PREPARED_BINARY_RESULT toggle to the
// connection URL. Deployments that route lib/pq through PgBouncer in
// transaction mode need disable_prepared_binary_result=yes or prepared reads
// come back corrupted; an explicit value in the URL always wins.
func normalizeDBURL(raw string, pgbouncerCompat bool) string {
	if !pgbouncerCompat {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	query := parsed.Query()
	if query.Has("disable_prepared_binary_result") {
		return raw
	}
	query.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = query.Encode()

	return parsed.String()
}

// dbNameFromURL extracts the database name for the otelsql attributes and the
// startup log line. Both postgres:// URLs and key=value DSNs are accepted
// since DB_URL takes either.
func dbNameFromURL(raw string) string {
	raw = strings.TrimSpace(raw)

	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		if name := strings.Trim(parsed.Path, "/ "); name != "" {
			return name
		}
	}

	for _, field := range strings.Fields(raw) {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key != "dbname" {
			continue
		}
		if name := strings.Trim(value, `"' `); name != "" {
			return name
		}
	}

	return ""
}
