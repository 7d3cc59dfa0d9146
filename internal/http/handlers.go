package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"finbook/internal/core"
)

// Request and response bodies. Amounts travel as decimal strings so
// clients never deal in cents.

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type loginResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type transactionRequest struct {
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

type transactionResponse struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
}

type budgetRequest struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Period   string `json:"period"`
}

type budgetResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Period   string `json:"period"`
}

type budgetStatusResponse struct {
	Category string `json:"category"`
	Budget   string `json:"budget"`
	Actual   string `json:"actual"`
	Exceeded bool   `json:"exceeded"`
}

type exceedanceResponse struct {
	Period      string                 `json:"period"`
	AnyExceeded bool                   `json:"any_exceeded"`
	Statuses    []budgetStatusResponse `json:"statuses"`
}

type reportResponse struct {
	Period  string `json:"period"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Savings string `json:"savings"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Kind:        string(tx.Kind),
		Amount:      tx.Amount.Decimal(),
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date.String(),
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return false
	}
	return true
}

func parseAmount(w http.ResponseWriter, s string) (core.Money, bool) {
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		writeError(w, err)
		return core.Money{}, false
	}
	return core.Money{Cents: cents}, true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Username: user.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, token, err := s.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token, UserID: user.ID, Username: user.Username})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}

	var date core.Date
	if strings.TrimSpace(req.Date) != "" {
		date, err = core.ParseDate(strings.TrimSpace(req.Date))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "date must be yyyy-mm-dd"})
			return
		}
	}

	tx, err := s.ledger.AddTransaction(r.Context(), userID, kind, amount, req.Category, req.Description, date)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.InfoContext(r.Context(), "Transaction created", "user_id", userID, "transaction_id", tx.ID)
	writeJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID int64) {
	items, err := s.ledger.ListTransactions(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]transactionResponse, 0, len(items))
	for _, tx := range items {
		out = append(out, toTransactionResponse(tx))
	}
	writeJSON(w, http.StatusOK, out)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid transaction id"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		writeError(w, err)
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}

	tx, err := s.ledger.UpdateTransaction(r.Context(), userID, id, amount, req.Category, kind)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userID int64) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request, userID int64) {
	var req budgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	period, err := core.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, err)
		return
	}
	amount, ok := parseAmount(w, req.Amount)
	if !ok {
		return
	}

	if err := s.budgets.SetBudget(r.Context(), userID, req.Category, amount, period); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, budgetResponse{
		Category: strings.TrimSpace(req.Category),
		Amount:   amount.Decimal(),
		Period:   string(period),
	})
}

// queryPeriod reads the period query parameter. An absent parameter
// defaults to monthly; any other value must parse or the request is
// rejected with 400.
func queryPeriod(w http.ResponseWriter, r *http.Request) (core.Period, bool) {
	raw := r.URL.Query().Get("period")
	if raw == "" {
		raw = string(core.Monthly)
	}
	period, err := core.ParsePeriod(raw)
	if err != nil {
		writeError(w, err)
		return "", false
	}
	return period, true
}

func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request, userID int64) {
	period, ok := queryPeriod(w, r)
	if !ok {
		return
	}

	items, err := s.budgets.GetBudget(r.Context(), userID, period)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]budgetResponse, 0, len(items))
	for _, b := range items {
		out = append(out, budgetResponse{
			Category: b.Category,
			Amount:   b.Amount.Decimal(),
			Period:   string(b.Period),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExceedance(w http.ResponseWriter, r *http.Request, userID int64) {
	period, ok := queryPeriod(w, r)
	if !ok {
		return
	}

	report, err := s.budgets.CheckExceedance(r.Context(), userID, period)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := exceedanceResponse{
		Period:      string(report.Period),
		AnyExceeded: report.AnyExceeded,
		Statuses:    make([]budgetStatusResponse, 0, len(report.Statuses)),
	}
	for _, st := range report.Statuses {
		resp.Statuses = append(resp.Statuses, budgetStatusResponse{
			Category: st.Category,
			Budget:   st.Budget.Decimal(),
			Actual:   st.Actual.Decimal(),
			Exceeded: st.Exceeded,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request, userID int64) {
	period, ok := queryPeriod(w, r)
	if !ok {
		return
	}

	report, err := s.reports.GenerateReport(r.Context(), userID, period)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reportResponse{
		Period:  string(report.Period),
		Start:   report.Start.String(),
		End:     report.End.String(),
		Income:  report.Income.Decimal(),
		Expense: report.Expense.Decimal(),
		Savings: report.Savings.Decimal(),
	})
}
