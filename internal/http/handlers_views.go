package http

import (
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/services"
)

var errTemplatesMissing = errors.New("templates not loaded")

var templateFuncs = template.FuncMap{
	"money":  core.FormatAmount,
	"signed": core.FormatSigned,
	"monthName": func(m int) string {
		if m < 1 || m > 12 {
			return ""
		}
		return time.Month(m).String()[:3]
	},
	"positive": func(d decimal.Decimal) bool { return d.IsPositive() },
}

type selectView struct {
	Name    string
	Label   string
	Options []optionView
}

// selectorsFor builds the four filter selectors with f's values selected.
func selectorsFor(f core.TransactionFilter, categories, paymentMethods, accounts []string) []selectView {
	build := func(name, label, current string, values []string) selectView {
		opts := []optionView{{Value: core.MatchAll, Label: "All", Selected: current == "" || current == core.MatchAll}}
		for _, v := range values {
			opts = append(opts, optionView{Value: v, Label: v, Selected: v == current})
		}
		return selectView{Name: name, Label: label, Options: opts}
	}
	return []selectView{
		build("category", "Category", f.Category, categories),
		build("payment_method", "Payment method", f.PaymentMethod, paymentMethods),
		build("account", "Account", f.Account, accounts),
	}
}

type dashboardPage struct {
	Nav string
	services.Overview
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.Dashboard == nil {
		http.NotFound(w, r)
		return
	}
	ov, err := s.deps.Dashboard.Overview(r.Context())
	if err != nil {
		requestLog(r).ErrorContext(r.Context(), "Dashboard load failed", applog.FieldError, err)
		InternalServerError("Could not load dashboard").Write(w)
		return
	}
	s.render(w, r, "dashboard.html", dashboardPage{Nav: "dashboard", Overview: ov})
}

func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.Dashboard == nil {
		writeJSONError(w, http.StatusNotFound, "not configured")
		return
	}
	ov, err := s.deps.Dashboard.Overview(r.Context())
	if err != nil {
		requestLog(r).ErrorContext(r.Context(), "Dashboard load failed", applog.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, "dashboard failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalBalance": ov.TotalBalance,
		"accounts":     ov.Accounts,
		"month":        ov.Month,
		"recent":       ov.Recent,
	})
}

type transactionsPage struct {
	Nav       string
	Search    string
	Selectors []selectView
	services.TransactionPage
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	f := ParseFilter(r.URL.Query())
	page, err := s.deps.Transactions.Browse(r.Context(), f)
	if err != nil {
		requestLog(r).ErrorContext(r.Context(), "Transactions load failed", applog.FieldFilter, f.Key(), applog.FieldError, err)
		InternalServerError("Could not load transactions").Write(w)
		return
	}
	s.render(w, r, "transactions.html", transactionsPage{
		Nav:             "transactions",
		Search:          f.Search,
		Selectors:       selectorsFor(f, page.Categories, page.PaymentMethods, page.Accounts),
		TransactionPage: page,
	})
}

func (s *Server) handleAPITransactions(w http.ResponseWriter, r *http.Request) {
	f := ParseFilter(r.URL.Query())
	page, err := s.deps.Transactions.Browse(r.Context(), f)
	if err != nil {
		requestLog(r).ErrorContext(r.Context(), "Transactions load failed", applog.FieldFilter, f.Key(), applog.FieldError, err)
		writeJSONError(w, http.StatusInternalServerError, "transactions failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":  page.Items,
		"totals": page.Totals,
		"options": map[string][]string{
			"categories":     page.Categories,
			"paymentMethods": page.PaymentMethods,
			"accounts":       page.Accounts,
		},
	})
}

type reportsPage struct {
	Nav       string
	Period    string
	Periods   []optionView
	Selectors []selectView
	Year      core.YearReport
	Month     core.MonthSummary
}

func periodOptions(current string) []optionView {
	if current == "" {
		current = services.PeriodLastYear
	}
	opts := []optionView{
		{Value: services.PeriodLastYear, Label: "Last 12 months"},
		{Value: services.PeriodThisYear, Label: "This year"},
	}
	custom := true
	for i := range opts {
		if opts[i].Value == current {
			opts[i].Selected = true
			custom = false
		}
	}
	if custom {
		opts = append(opts, optionView{Value: current, Label: current, Selected: true})
	}
	return opts
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.loadReports(r, sanitizeInput(q.Get("period")), ParseMonthParams(q), ParseFilter(q))
	if err != nil {
		if isBadReportInput(err) {
			BadRequestError(err.Error()).Write(w)
			return
		}
		requestLog(r).ErrorContext(r.Context(), "Reports load failed", applog.FieldError, err)
		InternalServerError("Could not load reports").Write(w)
		return
	}
	s.render(w, r, "reports.html", page)
}

func (s *Server) loadReports(r *http.Request, period string, mp MonthParams, f core.TransactionFilter) (reportsPage, error) {
	year, err := s.deps.Reports.Year(r.Context(), period, f)
	if err != nil {
		return reportsPage{}, err
	}
	month, err := s.deps.Reports.Month(r.Context(), mp.Year, mp.Month, f)
	if err != nil {
		return reportsPage{}, err
	}
	// selector options come from the whole book, not the filtered one
	all, err := s.deps.Transactions.Browse(r.Context(), core.TransactionFilter{})
	if err != nil {
		return reportsPage{}, err
	}
	return reportsPage{
		Nav:       "reports",
		Period:    year.Period,
		Periods:   periodOptions(year.Period),
		Selectors: selectorsFor(f, all.Categories, all.PaymentMethods, all.Accounts),
		Year:      year,
		Month:     month,
	}, nil
}

func (s *Server) handleAPIYearReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rep, err := s.deps.Reports.Year(r.Context(), sanitizeInput(q.Get("period")), ParseFilter(q))
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleAPIMonthSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mp := ParseMonthParams(q)
	sum, err := s.deps.Reports.Month(r.Context(), mp.Year, mp.Month, ParseFilter(q))
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (s *Server) reportError(w http.ResponseWriter, r *http.Request, err error) {
	if isBadReportInput(err) {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	requestLog(r).ErrorContext(r.Context(), "Report failed", applog.FieldError, err)
	writeJSONError(w, http.StatusInternalServerError, "report failed")
}

func isBadReportInput(err error) bool {
	return errors.Is(err, services.ErrInvalidPeriod) || errors.Is(err, services.ErrInvalidMonth)
}
