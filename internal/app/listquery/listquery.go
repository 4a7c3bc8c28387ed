// Package listquery turns flat URL query parameters into SQL predicates,
// an order clause and a page window for entity list endpoints. Each entity
// declares a Spec (searchable columns, filter keys, sortable columns, default
// order, role scope) and the same pipeline serves every list page.
package listquery

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/emre/schoolhub/internal/app/models"
)

// Reserved query parameter keys shared by all list endpoints
const (
	KeyPage      = "page"
	KeySearch    = "search"
	KeySortBy    = "sortBy"
	KeySortOrder = "sortOrder"

	// SentinelAll is the filter value meaning "filter not applied"
	SentinelAll = "all"

	// PageSize is the fixed page size shared by every list endpoint
	PageSize = 10
)

// Viewer identifies the caller a query is built for. PersonID is the id of
// the caller's role record (teachers.id, students.id or parents.id); it is
// 0 for admins.
type Viewer struct {
	Role     models.Role
	UserID   int64
	PersonID int64
}

// Params is a flat map of URL query parameters (first value per key)
type Params map[string]string

// ParamsFromQuery flattens url.Values into Params
func ParamsFromQuery(values url.Values) Params {
	params := make(Params, len(values))
	for key := range values {
		params[key] = values.Get(key)
	}
	return params
}

// FilterFunc builds one predicate from a raw filter value. Implementations
// must not fail: a malformed value maps to MatchNone so the request answers
// "no such records" instead of erroring.
type FilterFunc func(value string) squirrel.Sqlizer

// ScopeFunc builds the role-visibility predicate for a non-admin viewer.
// Returning nil means the viewer sees every row of the entity.
type ScopeFunc func(v Viewer) squirrel.Sqlizer

// Spec declares how one entity's list endpoint is queried
type Spec struct {
	// SearchColumns are OR-matched with case-insensitive containment when
	// the "search" parameter is present
	SearchColumns []string
	// Filters maps a query key to its predicate builder
	Filters map[string]FilterFunc
	// Sorts is the sortBy allow-list, mapping a sort key to a column
	// expression (related-entity columns included)
	Sorts map[string]string
	// DefaultOrder applies when sortBy is absent or not in Sorts
	DefaultOrder []string
	// TieBreak is appended to every order clause so pagination stays stable
	// across requests; usually the primary key ascending
	TieBreak string
	// Scope supplies the role-visibility predicate; consulted for every
	// non-admin viewer
	Scope ScopeFunc
}

// Query is the outcome of Build: the pieces a repository feeds into its
// select and count statements.
type Query struct {
	Where   squirrel.And
	OrderBy []string
	Offset  uint64
	Limit   uint64
	Page    int
}

// MatchNone is an always-false predicate. Malformed filter values and
// unrecognized roles resolve to it so the query runs and returns zero rows.
func MatchNone() squirrel.Sqlizer {
	return squirrel.Expr("1 = 0")
}

// Build assembles the query for one request. The role scope is ANDed in
// before any user-supplied filter, so no parameter combination can widen
// what the viewer is allowed to see.
func (s Spec) Build(params Params, viewer Viewer) Query {
	return s.BuildSized(params, viewer, PageSize)
}

// BuildSized is Build with an explicit page size; the export path uses it
// to walk the same scoped query in larger windows.
func (s Spec) BuildSized(params Params, viewer Viewer, pageSize int) Query {
	if pageSize <= 0 {
		pageSize = PageSize
	}

	where := s.scopeWhere(viewer)

	if q := strings.TrimSpace(params[KeySearch]); q != "" && len(s.SearchColumns) > 0 {
		where = append(where, SearchPredicate(s.SearchColumns, q))
	}

	for key, build := range s.Filters {
		value, ok := params[key]
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" || value == SentinelAll {
			continue
		}
		if pred := build(value); pred != nil {
			where = append(where, pred)
		}
	}

	page := ParsePage(params[KeyPage])

	return Query{
		Where:   where,
		OrderBy: s.orderBy(params[KeySortBy], params[KeySortOrder]),
		Offset:  uint64(page-1) * uint64(pageSize),
		Limit:   uint64(pageSize),
		Page:    page,
	}
}

// SearchWhere builds only the scope and containment predicates of the Spec,
// for the bounded per-type lookups of the aggregate search endpoint.
func (s Spec) SearchWhere(q string, viewer Viewer) squirrel.And {
	where := s.scopeWhere(viewer)
	if q = strings.TrimSpace(q); q != "" && len(s.SearchColumns) > 0 {
		where = append(where, SearchPredicate(s.SearchColumns, q))
	}
	return where
}

func (s Spec) scopeWhere(viewer Viewer) squirrel.And {
	where := squirrel.And{}

	switch {
	case viewer.Role == models.RoleAdmin:
		// no scope
	case !viewer.Role.Valid():
		// an unknown role is closed, not silently unscoped
		where = append(where, MatchNone())
	case s.Scope == nil:
		where = append(where, MatchNone())
	default:
		if pred := s.Scope(viewer); pred != nil {
			where = append(where, pred)
		}
	}

	return where
}

// SearchPredicate ORs a case-insensitive containment match over columns
func SearchPredicate(columns []string, q string) squirrel.Sqlizer {
	or := make(squirrel.Or, 0, len(columns))
	for _, column := range columns {
		or = append(or, squirrel.ILike{column: "%" + q + "%"})
	}
	return or
}

// ParsePage parses a 1-based page number, defaulting to 1 when the value is
// absent, non-numeric or not positive.
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (s Spec) orderBy(sortBy, sortOrder string) []string {
	column, ok := s.Sorts[sortBy]
	if !ok {
		order := append([]string(nil), s.DefaultOrder...)
		return s.withTieBreak(order)
	}

	direction := "ASC"
	if strings.EqualFold(sortOrder, "desc") {
		direction = "DESC"
	}
	return s.withTieBreak([]string{column + " " + direction})
}

func (s Spec) withTieBreak(order []string) []string {
	if s.TieBreak == "" {
		return order
	}
	for _, expr := range order {
		if strings.HasPrefix(expr, s.TieBreak) || expr == s.TieBreak {
			return order
		}
	}
	return append(order, s.TieBreak)
}
