package query

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func paramsForURL(t *testing.T, url string) FilterParams {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", url, nil)
	return ParseQueryParams(c)
}

func TestParseQueryParamsDefaults(t *testing.T) {
	params := paramsForURL(t, "/items")

	if params.Page != 1 {
		t.Errorf("Page = %d, want 1", params.Page)
	}
	if params.Limit != 20 {
		t.Errorf("Limit = %d, want 20", params.Limit)
	}
	if params.Sort.Field != "created_at" || params.Sort.Order != "desc" {
		t.Errorf("Sort = %+v, want created_at desc", params.Sort)
	}
	if len(params.Filters) != 0 {
		t.Errorf("Filters = %v, want empty", params.Filters)
	}
}

func TestParseQueryParamsClampsAndFilters(t *testing.T) {
	params := paramsForURL(t, "/items?page=0&limit=500&filter.status=PENDING&filter.empty=&sort=amount&order=ASC&search=maple")

	if params.Page != 1 {
		t.Errorf("Page = %d, want 1", params.Page)
	}
	if params.Limit != 100 {
		t.Errorf("Limit = %d, want clamp to 100", params.Limit)
	}
	if params.Filters["status"] != "PENDING" {
		t.Errorf("Filters = %v, want status=PENDING", params.Filters)
	}
	if _, ok := params.Filters["empty"]; ok {
		t.Error("empty filter value should be dropped")
	}
	if params.Sort.Field != "amount" || params.Sort.Order != "asc" {
		t.Errorf("Sort = %+v, want amount asc", params.Sort)
	}
	if params.Search != "maple" {
		t.Errorf("Search = %q, want %q", params.Search, "maple")
	}
}

func TestParseQueryParamsRejectsBogusOrder(t *testing.T) {
	params := paramsForURL(t, "/items?order=sideways")

	if params.Sort.Order != "desc" {
		t.Errorf("Order = %q, want fallback desc", params.Sort.Order)
	}
}

func TestBuildPaginationResponse(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int64
		totalPages int64
		hasNext    bool
		hasPrev    bool
	}{
		{"first of many", 1, 10, 25, 3, true, false},
		{"middle page", 2, 10, 25, 3, true, true},
		{"last page", 3, 10, 25, 3, false, true},
		{"exact fit", 2, 10, 20, 2, false, true},
		{"empty", 1, 10, 0, 0, false, false},
	}

	for _, tt := range tests {
		got := BuildPaginationResponse(tt.page, tt.limit, tt.total)
		if got.TotalPages != tt.totalPages || got.HasNext != tt.hasNext || got.HasPrev != tt.hasPrev {
			t.Errorf("%s: BuildPaginationResponse(%d, %d, %d) = %+v", tt.name, tt.page, tt.limit, tt.total, got)
		}
	}
}
