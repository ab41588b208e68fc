package postgres

import (
	"strconv"
	"strings"

	"github.com/baharkarakas/servicehub-backend/internal/models"
)

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) next() string { return "$" + strconv.Itoa(len(w.args)) }

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.ReplaceAll(cond, "?", w.next()))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// search matches one ILIKE pattern against every column. Wildcards typed
// by the caller are matched literally.
func (w *whereBuilder) search(term string, cols ...string) {
	w.args = append(w.args, "%"+likeEscaper.Replace(term)+"%")
	p := w.next()
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = c + " ILIKE " + p + ` ESCAPE '\'`
	}
	w.conds = append(w.conds, "("+strings.Join(parts, " OR ")+")")
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

var bookingSearchColumns = []string{
	"customer_name", "service_name", "category_name", "service_provider", "city", "phone",
}

var transactionSearchColumns = []string{
	"customer_name", "service_name", "phone", "transaction_id",
}

func bookingWhere(f models.BookingFilter) (string, []any) {
	var w whereBuilder
	if s := strings.TrimSpace(f.Status); s != "" && s != "all" {
		w.add("status = ?", s)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		w.search(s, bookingSearchColumns...)
	}
	if f.StartDate != nil {
		w.add("created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		w.add("created_at <= ?", *f.EndDate)
	}
	return w.sql(), w.args
}

func transactionWhere(f models.TransactionFilter) (string, []any) {
	var w whereBuilder
	if s := strings.TrimSpace(f.Status); s != "" && s != "all" {
		w.add("status = ?", s)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		w.search(s, transactionSearchColumns...)
	}
	return w.sql(), w.args
}

// pageClause appends LIMIT/OFFSET placeholders after the filter arguments.
func pageClause(args []any, page, limit int) (string, []any) {
	page, limit = models.Normalize(page, limit)
	args = append(args, limit, (page-1)*limit)
	n := len(args)
	return " LIMIT $" + strconv.Itoa(n-1) + " OFFSET $" + strconv.Itoa(n), args
}
