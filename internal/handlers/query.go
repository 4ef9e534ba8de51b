package handlers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskerhub/backend/internal/repositories"
	"taskerhub/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultPage  = 1
	defaultLimit = 25
	maxLimit     = 100
	defaultSort  = "-created_at"
)

// maxPage keeps (page-1)*limit well inside int range on every platform.
const maxPage = 100000

type fieldKind int

const (
	kindString fieldKind = iota
	kindUUID
	kindDecimal
	kindTime
)

// field maps a public JSON name onto its store column and value type.
type field struct {
	column string
	kind   fieldKind
}

// Fields is the whitelist of filterable and sortable fields of a resource,
// keyed by their JSON name.
type Fields map[string]field

var (
	profileFields = Fields{
		"name":       {"name", kindString},
		"slug":       {"slug", kindString},
		"phone":      {"phone", kindString},
		"email":      {"email", kindString},
		"user":       {"user_id", kindUUID},
		"created_at": {"created_at", kindTime},
	}
	taskFields = Fields{
		"title":      {"title", kindString},
		"status":     {"status", kindString},
		"budget":     {"budget", kindDecimal},
		"due_date":   {"due_date", kindTime},
		"profile":    {"profile_id", kindUUID},
		"user":       {"user_id", kindUUID},
		"created_at": {"created_at", kindTime},
		"updated_at": {"updated_at", kindTime},
	}
	userFields = Fields{
		"name":       {"name", kindString},
		"email":      {"email", kindString},
		"role":       {"role", kindString},
		"created_at": {"created_at", kindTime},
	}
	paymentFields = Fields{
		"status":       {"status", kindString},
		"reference_id": {"reference_id", kindString},
		"amount":       {"amount", kindDecimal},
		"user":         {"user_id", kindUUID},
		"task":         {"task_id", kindUUID},
		"task_owner":   {"task_owner_id", kindUUID},
		"paid_at":      {"paid_at", kindTime},
		"created_at":   {"created_at", kindTime},
	}
)

// reserved query parameters that are never treated as filters
var reserved = map[string]bool{"select": true, "sort": true, "page": true, "limit": true}

// AdvancedQuery is a parsed list request: filters, sort, paging and an
// optional projection of the response fields.
type AdvancedQuery struct {
	Query  repositories.Query
	Page   int
	Limit  int
	Select []string
}

// ParseAdvancedQuery reads filters (?status=open, ?budget[gte]=10,
// ?status[in]=open,assigned), select, sort, page and limit. Unknown fields
// are ignored; malformed values are a ValidationFailed error.
func ParseAdvancedQuery(c *gin.Context, fields Fields) (*AdvancedQuery, error) {
	aq := &AdvancedQuery{Page: defaultPage, Limit: defaultLimit}
	var q repositories.Query

	for key, values := range c.Request.URL.Query() {
		if reserved[key] || len(values) == 0 {
			continue
		}

		name, opName := splitOperator(key)
		f, ok := fields[name]
		if !ok {
			continue
		}
		op, ok := repositories.ParseOperator(opName)
		if !ok {
			return nil, services.ValidationFailed(fmt.Sprintf("Unsupported operator %q on %s", opName, name), nil)
		}

		raw := values[len(values)-1]
		var (
			value interface{}
			err   error
		)
		if op == repositories.OpIn {
			value, err = convertList(f.kind, raw)
		} else {
			value, err = convert(f.kind, raw)
		}
		if err != nil {
			return nil, services.ValidationFailed(fmt.Sprintf("Invalid value %q for %s", raw, name), err)
		}
		q = q.Where(f.column, op, value)
	}

	sortParam := c.DefaultQuery("sort", defaultSort)
	for _, s := range strings.Split(sortParam, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		desc := strings.HasPrefix(s, "-")
		f, ok := fields[strings.TrimPrefix(s, "-")]
		if !ok {
			return nil, services.ValidationFailed(fmt.Sprintf("Can not sort by %s", strings.TrimPrefix(s, "-")), nil)
		}
		q = q.OrderBy(f.column, desc)
	}

	var err error
	if aq.Page, err = positiveInt(c.Query("page"), defaultPage); err != nil {
		return nil, services.ValidationFailed("page must be a positive integer", err)
	}
	if aq.Page > maxPage {
		return nil, services.ValidationFailed(fmt.Sprintf("page must be at most %d", maxPage), nil)
	}
	if aq.Limit, err = positiveInt(c.Query("limit"), defaultLimit); err != nil {
		return nil, services.ValidationFailed("limit must be a positive integer", err)
	}
	if aq.Limit > maxLimit {
		aq.Limit = maxLimit
	}

	if sel := c.Query("select"); sel != "" {
		for _, s := range strings.Split(sel, ",") {
			if s = strings.TrimSpace(s); s != "" {
				aq.Select = append(aq.Select, s)
			}
		}
	}

	aq.Query = q.Page((aq.Page-1)*aq.Limit, aq.Limit)
	return aq, nil
}

// splitOperator turns "budget[gte]" into ("budget", "gte") and "status"
// into ("status", "eq").
func splitOperator(key string) (string, string) {
	open := strings.IndexByte(key, '[')
	if open < 0 || !strings.HasSuffix(key, "]") {
		return key, string(repositories.OpEq)
	}
	return key[:open], key[open+1 : len(key)-1]
}

func convert(kind fieldKind, raw string) (interface{}, error) {
	switch kind {
	case kindUUID:
		return uuid.FromString(raw)
	case kindDecimal:
		return decimal.NewFromString(raw)
	case kindTime:
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", raw)
	default:
		return raw, nil
	}
}

func convertList(kind fieldKind, raw string) (interface{}, error) {
	parts := strings.Split(raw, ",")
	out := make([]interface{}, 0, len(parts))
	for _, p := range parts {
		v, err := convert(kind, strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func positiveInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}

// PageRef points at a neighbouring page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

func (aq *AdvancedQuery) Pagination(total int64) Pagination {
	var p Pagination
	if int64(aq.Page)*int64(aq.Limit) < total {
		p.Next = &PageRef{Page: aq.Page + 1, Limit: aq.Limit}
	}
	if aq.Page > 1 {
		p.Prev = &PageRef{Page: aq.Page - 1, Limit: aq.Limit}
	}
	return p
}

// project keeps only the selected JSON fields of every item. The id is
// always kept.
func project[T any](items []T, selected []string) (interface{}, error) {
	if items == nil {
		items = []T{}
	}
	if len(selected) == 0 {
		return items, nil
	}

	keep := map[string]bool{"id": true}
	for _, s := range selected {
		keep[s] = true
	}

	out := make([]map[string]json.RawMessage, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, err
		}
		var all map[string]json.RawMessage
		if err := json.Unmarshal(raw, &all); err != nil {
			return nil, err
		}
		for k := range all {
			if !keep[k] {
				delete(all, k)
			}
		}
		out = append(out, all)
	}
	return out, nil
}
