package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports whether err is a postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func int64sToAny(values []int64) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

// stringArrayToSlice normalizes an empty array column to a nil slice so
// domain comparisons treat "no alternates" uniformly.
func stringArrayToSlice(values pq.StringArray) []string {
	if len(values) == 0 {
		return nil
	}
	return append([]string(nil), values...)
}

// sliceToStringArray maps a nil slice to an empty array value. The column is
// NOT NULL, and a nil pq.StringArray would write NULL instead.
func sliceToStringArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
