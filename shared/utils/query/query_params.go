package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// FilterParams carries the list options parsed from a request:
// pagination, free-text search, column filters and sort order.
type FilterParams struct {
	Filters map[string]string `json:"filters"`
	Sort    SortParams        `json:"sort"`
	Page    int               `json:"page"`
	Limit   int               `json:"limit"`
	Search  string            `json:"search"`
}

// SortParams is a single sort column and direction.
type SortParams struct {
	Field string `json:"field"`
	Order string `json:"order"`
}

// PaginationResponse is the pagination block returned alongside list items.
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ParseQueryParams reads the shared list parameters from the request.
// Column filters use the form filter.<field>=<value>; sorting uses
// sort=<field> with order=asc|desc.
func ParseQueryParams(c *gin.Context) FilterParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	filters := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		field, ok := strings.CutPrefix(key, "filter.")
		if !ok || field == "" {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			filters[field] = values[0]
		}
	}

	sort := SortParams{
		Field: c.DefaultQuery("sort", "created_at"),
		Order: strings.ToLower(c.DefaultQuery("order", "desc")),
	}
	if sort.Order != "asc" && sort.Order != "desc" {
		sort.Order = "desc"
	}

	return FilterParams{
		Filters: filters,
		Sort:    sort,
		Page:    page,
		Limit:   limit,
		Search:  c.Query("search"),
	}
}

// ApplyFilters adds equality conditions for every filter whose field
// appears in allowedFields. Unknown fields are dropped, never passed
// to the database.
func ApplyFilters(query *gorm.DB, filters map[string]string, allowedFields map[string]string) *gorm.DB {
	for field, value := range filters {
		dbField, ok := allowedFields[field]
		if !ok || value == "" {
			continue
		}
		query = query.Where(fmt.Sprintf("%s = ?", dbField), value)
	}
	return query
}

// ApplySearch adds a case-insensitive substring match over searchFields.
func ApplySearch(query *gorm.DB, search string, searchFields []string) *gorm.DB {
	if search == "" || len(searchFields) == 0 {
		return query
	}

	var clause strings.Builder
	args := make([]interface{}, 0, len(searchFields))
	for i, field := range searchFields {
		if i > 0 {
			clause.WriteString(" OR ")
		}
		clause.WriteString(field)
		clause.WriteString(" ILIKE ?")
		args = append(args, "%"+search+"%")
	}
	return query.Where(clause.String(), args...)
}

// ApplySort orders by the requested column when it is in
// allowedSortFields, otherwise falls back to newest first.
func ApplySort(query *gorm.DB, sort SortParams, allowedSortFields map[string]string) *gorm.DB {
	dbField, ok := allowedSortFields[sort.Field]
	if !ok {
		return query.Order("created_at DESC")
	}
	return query.Order(dbField + " " + strings.ToUpper(sort.Order))
}

// ApplyPagination applies the page window.
func ApplyPagination(query *gorm.DB, page, limit int) *gorm.DB {
	return query.Offset((page - 1) * limit).Limit(limit)
}

// BuildPaginationResponse computes the pagination block for a list response.
func BuildPaginationResponse(page, limit int, total int64) PaginationResponse {
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    int64(page) < totalPages,
		HasPrev:    page > 1,
	}
}
