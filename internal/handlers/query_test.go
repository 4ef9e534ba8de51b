package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"taskerhub/backend/internal/models"
	"taskerhub/backend/internal/repositories"
	"taskerhub/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextFor(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestParseAdvancedQuery_Defaults(t *testing.T) {
	aq, err := ParseAdvancedQuery(contextFor("/tasks"), taskFields)
	require.NoError(t, err)

	assert.Equal(t, 1, aq.Page)
	assert.Equal(t, 25, aq.Limit)
	assert.Empty(t, aq.Query.Conditions)
	assert.Equal(t, []repositories.SortField{{Field: "created_at", Desc: true}}, aq.Query.Sort)
	assert.Equal(t, 0, aq.Query.Offset)
	assert.Equal(t, 25, aq.Query.Limit)
}

func TestParseAdvancedQuery_Filters(t *testing.T) {
	profileID := uuid.Must(uuid.NewV4())
	aq, err := ParseAdvancedQuery(contextFor("/tasks?budget[gte]=10.5&status[in]=open,assigned&profile="+profileID.String()+"&bogus=1"), taskFields)
	require.NoError(t, err)

	byField := map[string]repositories.Condition{}
	for _, c := range aq.Query.Conditions {
		byField[c.Field] = c
	}
	require.Len(t, byField, 3, "unknown fields are ignored")

	budget := byField["budget"]
	assert.Equal(t, repositories.OpGte, budget.Op)
	assert.True(t, decimal.RequireFromString("10.5").Equal(budget.Value.(decimal.Decimal)))

	status := byField["status"]
	assert.Equal(t, repositories.OpIn, status.Op)
	assert.Equal(t, []interface{}{"open", "assigned"}, status.Value)

	profile := byField["profile_id"]
	assert.Equal(t, repositories.OpEq, profile.Op)
	assert.Equal(t, profileID, profile.Value)
}

func TestParseAdvancedQuery_SortAndPaging(t *testing.T) {
	aq, err := ParseAdvancedQuery(contextFor("/tasks?sort=-budget,title&page=3&limit=500"), taskFields)
	require.NoError(t, err)

	assert.Equal(t, []repositories.SortField{{Field: "budget", Desc: true}, {Field: "title"}}, aq.Query.Sort)
	assert.Equal(t, 100, aq.Limit, "limit is capped")
	assert.Equal(t, 200, aq.Query.Offset)
}

func TestParseAdvancedQuery_Rejects(t *testing.T) {
	targets := []string{
		"/tasks?budget[regex]=1",
		"/tasks?budget=lots",
		"/tasks?profile=not-a-uuid",
		"/tasks?sort=password",
		"/tasks?page=0",
		"/tasks?page=100001",
		"/tasks?page=4611686018427387904&limit=2",
		"/tasks?page=99999999999999999999",
		"/tasks?limit=abc",
		"/tasks?due_date[lt]=tomorrow",
	}

	for _, target := range targets {
		t.Run(target, func(t *testing.T) {
			_, err := ParseAdvancedQuery(contextFor(target), taskFields)
			assert.True(t, services.IsKind(err, services.KindValidationFailed), "got %v", err)
		})
	}
}

func TestParseAdvancedQuery_LastPage(t *testing.T) {
	aq, err := ParseAdvancedQuery(contextFor("/tasks?page=100000&limit=100"), taskFields)
	require.NoError(t, err)
	assert.Equal(t, 9999900, aq.Query.Offset)
	assert.Equal(t, 100, aq.Query.Limit)

	p := aq.Pagination(50)
	assert.Nil(t, p.Next, "no next page past the total")
	require.NotNil(t, p.Prev)
	assert.Equal(t, 99999, p.Prev.Page)
}

func TestPagination(t *testing.T) {
	tests := []struct {
		page, limit int
		total       int64
		next, prev  bool
	}{
		{1, 25, 0, false, false},
		{1, 25, 25, false, false},
		{1, 25, 26, true, false},
		{2, 10, 15, false, true},
		{2, 10, 30, true, true},
		{maxPage, maxLimit, 1 << 40, true, true},
		{maxPage, maxLimit, 9999950, false, true},
	}

	for _, tt := range tests {
		aq := &AdvancedQuery{Page: tt.page, Limit: tt.limit}
		p := aq.Pagination(tt.total)
		assert.Equal(t, tt.next, p.Next != nil, "next for page %d of %d", tt.page, tt.total)
		assert.Equal(t, tt.prev, p.Prev != nil, "prev for page %d of %d", tt.page, tt.total)
	}
}

func TestProject(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	tasks := []models.Task{{ID: id, Title: "Paint", Status: models.TaskOpen, Description: "fence"}}

	out, err := project(tasks, []string{"title", "status"})
	require.NoError(t, err)

	rows := out.([]map[string]json.RawMessage)
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 3)
	assert.JSONEq(t, `"Paint"`, string(rows[0]["title"]))
	assert.JSONEq(t, `"`+id.String()+`"`, string(rows[0]["id"]))

	same, err := project(tasks, nil)
	require.NoError(t, err)
	assert.Equal(t, tasks, same)

	empty, err := project[models.Task](nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []models.Task{}, empty)
}
