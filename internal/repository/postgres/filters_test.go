package postgres

import (
	"testing"
	"time"

	"github.com/baharkarakas/servicehub-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBookingWhereEmpty(t *testing.T) {
	where, args := bookingWhere(models.BookingFilter{Status: "all"})
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestBookingWhereAllFilters(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	where, args := bookingWhere(models.BookingFilter{
		Status:    "Pending",
		Search:    "plumb",
		StartDate: &start,
		EndDate:   &end,
	})

	assert.Equal(t,
		" WHERE status = $1 AND (customer_name ILIKE $2 ESCAPE '\\' OR service_name ILIKE $2 ESCAPE '\\'"+
			" OR category_name ILIKE $2 ESCAPE '\\' OR service_provider ILIKE $2 ESCAPE '\\'"+
			" OR city ILIKE $2 ESCAPE '\\' OR phone ILIKE $2 ESCAPE '\\')"+
			" AND created_at >= $3 AND created_at <= $4",
		where)
	assert.Equal(t, []any{"Pending", "%plumb%", start, end}, args)
}

func TestTransactionWhere(t *testing.T) {
	where, args := transactionWhere(models.TransactionFilter{Search: "ws_CO"})
	assert.Equal(t,
		" WHERE (customer_name ILIKE $1 ESCAPE '\\' OR service_name ILIKE $1 ESCAPE '\\'"+
			" OR phone ILIKE $1 ESCAPE '\\' OR transaction_id ILIKE $1 ESCAPE '\\')",
		where)
	assert.Equal(t, []any{`%ws\_CO%`}, args)
}

func TestSearchEscapesWildcards(t *testing.T) {
	_, args := bookingWhere(models.BookingFilter{Search: `50%_off\`})
	assert.Equal(t, []any{`%50\%\_off\\%`}, args)
}

func TestPageClause(t *testing.T) {
	clause, args := pageClause([]any{"Pending"}, 3, 20)
	assert.Equal(t, " LIMIT $2 OFFSET $3", clause)
	assert.Equal(t, []any{"Pending", 20, 40}, args)

	clause, args = pageClause(nil, 0, 0)
	assert.Equal(t, " LIMIT $1 OFFSET $2", clause)
	assert.Equal(t, []any{10, 0}, args)
}
