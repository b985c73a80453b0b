package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"resumebuilder/internal/apperrors"
)

// Scope narrows a query to a fixed set of column equalities, e.g. ownership
// ("owner_id" = current user) or the active-account filter. It is merged into
// the WHERE clause of every read/write it is passed to.
type Scope map[string]any

// Store is the generic persistence contract the resource handlers are
// parameterized over. One implementation per resource type.
type Store[T any] interface {
	Create(ctx context.Context, doc *T) error
	GetByID(ctx context.Context, id uuid.UUID, scope Scope) (*T, error)
	Update(ctx context.Context, id uuid.UUID, patch map[string]any, scope Scope) (*T, error)
	Delete(ctx context.Context, id uuid.UUID, scope Scope) error
	List(ctx context.Context, q ListQuery, scope Scope) ([]*T, error)
}

type SortKey struct {
	Field string
	Desc  bool
}

// ListQuery carries the client's list parameters. Compilation applies them in
// a fixed order: filter, then sort, then pagination; field projection happens
// at serialization time and never changes which rows come back.
type ListQuery struct {
	Filter map[string]string
	Sort   []SortKey
	Fields []string
	Page   int
	Limit  int
}

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// ParseListQuery reads the reserved parameters (page, limit, sort, fields)
// and treats every remaining parameter as an equality filter, mirroring the
// query API the frontend already speaks.
func ParseListQuery(values url.Values) ListQuery {
	q := ListQuery{Filter: map[string]string{}, Page: 1, Limit: defaultLimit}

	if v := values.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Page = n
		}
	}
	if v := values.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxLimit {
			q.Limit = n
		}
	}
	for _, part := range strings.Split(values.Get("sort"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "-") {
			q.Sort = append(q.Sort, SortKey{Field: part[1:], Desc: true})
		} else {
			q.Sort = append(q.Sort, SortKey{Field: part})
		}
	}
	for _, part := range strings.Split(values.Get("fields"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			q.Fields = append(q.Fields, part)
		}
	}
	for key, vals := range values {
		switch key {
		case "page", "limit", "sort", "fields":
			continue
		}
		if len(vals) > 0 && vals[0] != "" {
			q.Filter[key] = vals[0]
		}
	}
	return q
}

// whereClause renders scope plus filters against a field->column whitelist.
// Unknown filter fields are a client error, not a silently ignored one.
func whereClause(allowed map[string]string, scope Scope, filter map[string]string, args *[]any) (string, error) {
	var conds []string

	scopeCols := make([]string, 0, len(scope))
	for col := range scope {
		scopeCols = append(scopeCols, col)
	}
	sort.Strings(scopeCols)
	for _, col := range scopeCols {
		*args = append(*args, scope[col])
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(*args)))
	}

	fields := make([]string, 0, len(filter))
	for f := range filter {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		col, ok := allowed[f]
		if !ok {
			return "", apperrors.Newf(apperrors.KindValidation, "Cannot filter by field %q", f)
		}
		*args = append(*args, filter[f])
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(*args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), nil
}

// listClauses compiles a ListQuery into WHERE / ORDER BY / LIMIT-OFFSET SQL.
// defaultSort keeps pagination stable when the client does not sort.
func listClauses(allowed map[string]string, scope Scope, q ListQuery, defaultSort string) (string, []any, error) {
	var args []any
	where, err := whereClause(allowed, scope, q.Filter, &args)
	if err != nil {
		return "", nil, err
	}

	var orderCols []string
	for _, k := range q.Sort {
		col, ok := allowed[k.Field]
		if !ok {
			return "", nil, apperrors.Newf(apperrors.KindValidation, "Cannot sort by field %q", k.Field)
		}
		dir := " ASC"
		if k.Desc {
			dir = " DESC"
		}
		orderCols = append(orderCols, col+dir)
	}
	if len(orderCols) == 0 {
		orderCols = []string{defaultSort}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	sqlTail := fmt.Sprintf("%s ORDER BY %s LIMIT $%d OFFSET $%d",
		where, strings.Join(orderCols, ", "), len(args)-1, len(args))
	return sqlTail, args, nil
}

// mergePatch overlays a JSON patch onto an existing document, so a partial
// update goes through the same validation as a create.
func mergePatch[T any](doc *T, patch map[string]any, immutable ...string) (*T, error) {
	for _, f := range immutable {
		delete(patch, f)
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "Invalid update payload", err)
	}
	updated := *doc
	if err := json.Unmarshal(raw, &updated); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "Invalid update payload", err)
	}
	return &updated, nil
}
