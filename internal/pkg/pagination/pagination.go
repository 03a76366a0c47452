package pagination

import (
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/perkstack/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Query holds parsed pagination parameters.
type Query struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the current page.
func (q Query) Offset() int { return (q.Page - 1) * q.Limit }

// FromContext extracts and bounds pagination params from the request.
// Non-numeric, missing, zero and negative pages all behave as page 1; the
// effective limit is always within [1, MaxLimit].
func FromContext(c *gin.Context) Query {
	page := parseIntOr(c.DefaultQuery("page", "1"), DefaultPage)
	limit := parseIntOr(c.DefaultQuery("limit", "10"), DefaultLimit)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Query{Page: page, Limit: limit}
}

// Paginate applies limit/offset to a GORM query and returns the pagination
// metadata. The page select and the count run as two independent statements
// issued concurrently; neither depends on the other's result.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Meta, error) {
	var wg sync.WaitGroup
	var total int64
	var countErr, pageErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		countErr = db.Session(&gorm.Session{}).Count(&total).Error
	}()
	go func() {
		defer wg.Done()
		pageErr = db.Session(&gorm.Session{}).Offset(q.Offset()).Limit(q.Limit).Find(dest).Error
	}()
	wg.Wait()

	if countErr != nil {
		return response.Meta{}, countErr
	}
	if pageErr != nil {
		return response.Meta{}, pageErr
	}

	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))

	return response.Meta{
		CurrentPage: q.Page,
		TotalPages:  totalPages,
		TotalCount:  total,
		Limit:       q.Limit,
	}, nil
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
