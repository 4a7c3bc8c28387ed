package listquery

import (
	"strconv"
	"time"

	"github.com/Masterminds/squirrel"
)

// IntColumn builds an equality filter for a numeric column. Non-numeric
// values resolve to MatchNone rather than an error.
func IntColumn(column string) FilterFunc {
	return func(value string) squirrel.Sqlizer {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return MatchNone()
		}
		return squirrel.Eq{column: n}
	}
}

// EnumColumn builds an equality filter restricted to an allow-list of
// values; anything else resolves to MatchNone.
func EnumColumn(column string, allowed ...string) FilterFunc {
	return func(value string) squirrel.Sqlizer {
		for _, candidate := range allowed {
			if value == candidate {
				return squirrel.Eq{column: value}
			}
		}
		return MatchNone()
	}
}

// BoolColumn builds an equality filter for a boolean column, accepting
// "true" and "false" only.
func BoolColumn(column string) FilterFunc {
	return func(value string) squirrel.Sqlizer {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return MatchNone()
		}
		return squirrel.Eq{column: b}
	}
}

// DateColumn builds a day-equality filter for a timestamp column from an
// ISO date (2006-01-02).
func DateColumn(column string) FilterFunc {
	return func(value string) squirrel.Sqlizer {
		day, err := time.Parse("2006-01-02", value)
		if err != nil {
			return MatchNone()
		}
		return squirrel.Expr(column+"::date = ?", day.Format("2006-01-02"))
	}
}
