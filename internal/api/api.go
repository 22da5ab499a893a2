// Package api exposes the management operations as a JSON HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/customers"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/drinks"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/ledger"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/pricing"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/providers"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/reports"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/sessions"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/supplies"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/users"
)

// operatorSource resolves the operator named in the X-Operator header;
// users.Repo is the production implementation.
type operatorSource interface {
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

type Handler struct {
	sessions  *sessions.Service
	store     *sessions.Repo
	pricing   *pricing.Repo
	providers *providers.Repo
	customers *customers.Repo
	drinks    *drinks.Service
	drinkRepo *drinks.Repo
	settle    *ledger.Service
	closures  *ledger.ClosureRepo
	users     *users.Repo
	operators operatorSource
	supplies  *supplies.Repo
	log       *slog.Logger
}

func New(
	sessionSvc *sessions.Service,
	store *sessions.Repo,
	pricingRepo *pricing.Repo,
	providerRepo *providers.Repo,
	customerRepo *customers.Repo,
	drinkSvc *drinks.Service,
	drinkRepo *drinks.Repo,
	settleSvc *ledger.Service,
	closureRepo *ledger.ClosureRepo,
	userRepo *users.Repo,
	supplyRepo *supplies.Repo,
	log *slog.Logger,
) *Handler {
	return &Handler{
		sessions:  sessionSvc,
		store:     store,
		pricing:   pricingRepo,
		providers: providerRepo,
		customers: customerRepo,
		drinks:    drinkSvc,
		drinkRepo: drinkRepo,
		settle:    settleSvc,
		closures:  closureRepo,
		users:     userRepo,
		operators: userRepo,
		supplies:  supplyRepo,
		log:       log,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("GET /api/sessions", h.listSessions)
	mux.HandleFunc("GET /api/sessions/{id}", h.getSession)
	mux.HandleFunc("PATCH /api/sessions/{id}", h.editSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.deleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/start", h.startSession)
	mux.HandleFunc("POST /api/sessions/{id}/finish", h.finishSession)
	mux.HandleFunc("POST /api/sessions/{id}/cancel", h.cancelSession)

	mux.HandleFunc("GET /api/pricing", h.listRules)
	mux.HandleFunc("POST /api/pricing", h.addRule)
	mux.HandleFunc("PUT /api/pricing/{id}", h.updateRule)
	mux.HandleFunc("DELETE /api/pricing/{id}", h.deleteRule)

	mux.HandleFunc("GET /api/ledger", h.ledgerSummary)
	mux.HandleFunc("POST /api/ledger/settle", h.settleCommissions)
	mux.HandleFunc("POST /api/closures", h.closeDay)
	mux.HandleFunc("GET /api/closures/{date}", h.getClosure)

	mux.HandleFunc("GET /api/reports", h.report)
	mux.HandleFunc("GET /api/reports/export", h.reportExport)

	mux.HandleFunc("GET /api/users", h.listUsers)
	mux.HandleFunc("POST /api/users", h.addUser)
	mux.HandleFunc("PUT /api/users/{id}", h.updateUser)

	mux.HandleFunc("GET /api/supplies", h.listSupplies)
	mux.HandleFunc("POST /api/supplies", h.addSupply)
	mux.HandleFunc("PUT /api/supplies/{id}", h.updateSupply)
	mux.HandleFunc("POST /api/sessions/{id}/supplies", h.recordSupplyUsage)
	mux.HandleFunc("GET /api/sessions/{id}/supplies", h.listSupplyUsage)

	mux.HandleFunc("GET /api/drinks/products", h.listDrinkProducts)
	mux.HandleFunc("POST /api/drinks/orders", h.openDrinkOrder)
	mux.HandleFunc("POST /api/drinks/orders/{id}/items", h.addDrinkItems)
	mux.HandleFunc("POST /api/drinks/orders/{id}/close", h.closeDrinkOrder)
	mux.HandleFunc("POST /api/drinks/orders/{id}/cancel", h.cancelDrinkOrder)
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response", "err", err)
	}
}

type apiError struct {
	Error string `json:"error"`
}

func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, sessions.ErrNotFound),
		errors.Is(err, drinks.ErrNotFound),
		errors.Is(err, pgx.ErrNoRows):
		code = http.StatusNotFound
	case errors.Is(err, errForbidden):
		code = http.StatusForbidden
	case errors.Is(err, sessions.ErrValidation):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, sessions.ErrInvalidTransition),
		errors.Is(err, drinks.ErrNotOpen),
		errors.Is(err, pricing.ErrRuleInUse):
		code = http.StatusConflict
	case errors.Is(err, ledger.ErrNoCommission),
		errors.Is(err, drinks.ErrEmptyTab):
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		h.log.Error("request failed", "err", err)
	}
	h.writeJSON(w, code, apiError{Error: err.Error()})
}

func decode[T any](r *http.Request) (T, error) {
	var v T
	err := json.NewDecoder(r.Body).Decode(&v)
	return v, err
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	in, err := decode[sessions.CreateInput](r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	s, err := h.sessions.Create(r.Context(), in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, s)
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	var (
		out []sessions.Session
		err error
	)
	if date := r.URL.Query().Get("date"); date != "" {
		out, err = h.store.ListByDate(r.Context(), date)
	} else {
		out, err = h.store.List(r.Context())
	}
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

func (h *Handler) editSession(w http.ResponseWriter, r *http.Request) {
	in, err := decode[sessions.EditInput](r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	s, err := h.sessions.Edit(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Start(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

func (h *Handler) finishSession(w http.ResponseWriter, r *http.Request) {
	in, err := decode[sessions.FinishInput](r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	s, err := h.sessions.Finish(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

func (h *Handler) cancelSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, s)
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.pricing.List(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rules)
}

func (h *Handler) addRule(w http.ResponseWriter, r *http.Request) {
	if err := h.manageAllowed(r); err != nil {
		h.writeErr(w, err)
		return
	}
	in, err := decode[pricing.PricingRule](r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	rule, err := h.pricing.Add(r.Context(), in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rule)
}

func (h *Handler) updateRule(w http.ResponseWriter, r *http.Request) {
	if err := h.manageAllowed(r); err != nil {
		h.writeErr(w, err)
		return
	}
	in, err := decode[pricing.PricingRule](r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	in.ID = r.PathValue("id")
	rule, err := h.pricing.Update(r.Context(), in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if rule == nil {
		h.writeJSON(w, http.StatusNotFound, apiError{Error: "pricing rule not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, rule)
}

func (h *Handler) deleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.manageAllowed(r); err != nil {
		h.writeErr(w, err)
		return
	}
	id := r.PathValue("id")
	err := h.pricing.Delete(r.Context(), id)
	if errors.Is(err, pricing.ErrRuleInUse) {
		// referenced rules are deactivated instead, keeping historical
		// sessions explainable
		if err := h.pricing.SetActive(r.Context(), id, false); err != nil {
			h.writeErr(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]string{"result": "deactivated"})
		return
	}
	if err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func periodFromQuery(r *http.Request) ledger.Period {
	q := r.URL.Query()
	year, _ := strconv.Atoi(q.Get("year"))
	switch q.Get("kind") {
	case "MONTHLY":
		month, _ := strconv.Atoi(q.Get("month"))
		return ledger.Month(year, month)
	case "ANNUAL":
		return ledger.Year(year)
	default:
		return ledger.Day(q.Get("date"))
	}
}

type providerLedger struct {
	ledger.ProviderSummary
	Statement    string `json:"statement"`
	WhatsAppLink string `json:"whatsappLink,omitempty"`
}

func (h *Handler) ledgerSummary(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)

	sess, err := h.store.List(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	provs, err := h.providers.List(r.Context(), false)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	custs, err := h.customers.List(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}

	out := make([]providerLedger, 0)
	for _, ps := range ledger.SummarizeByProvider(sess, provs, custs, period) {
		msg := ledger.Statement(ps, period)
		pl := providerLedger{ProviderSummary: ps, Statement: msg}
		if ps.Provider.Phone != "" {
			pl.WhatsAppLink = ledger.WhatsAppLink(ps.Provider.Phone, msg)
		}
		out = append(out, pl)
	}
	h.writeJSON(w, http.StatusOK, out)
}

type settleRequest struct {
	Provider      string                 `json:"provider"`
	SessionIDs    []string               `json:"sessionIds"`
	PaymentMethod sessions.PaymentMethod `json:"paymentMethod"`
}

func (h *Handler) settleCommissions(w http.ResponseWriter, r *http.Request) {
	in, err := decode[settleRequest](r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	if err := h.settle.Settle(r.Context(), in.Provider, in.SessionIDs, in.PaymentMethod); err != nil {
		h.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type closeDayRequest struct {
	Date     string `json:"date"`
	ClosedBy string `json:"closedBy"`
}

func (h *Handler) closeDay(w http.ResponseWriter, r *http.Request) {
	if err := h.manageAllowed(r); err != nil {
		h.writeErr(w, err)
		return
	}
	in, err := decode[closeDayRequest](r)
	if err != nil || in.Date == "" {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	sess, err := h.store.ListByDate(r.Context(), in.Date)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	closure, err := h.closures.Save(r.Context(), ledger.ComputeClosure(in.Date, sess, in.ClosedBy))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, closure)
}

func (h *Handler) getClosure(w http.ResponseWriter, r *http.Request) {
	closure, err := h.closures.GetByDate(r.Context(), r.PathValue("date"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if closure == nil {
		h.writeJSON(w, http.StatusNotFound, apiError{Error: "no closure for date"})
		return
	}
	h.writeJSON(w, http.StatusOK, closure)
}

func (h *Handler) buildReport(r *http.Request) (reports.Summary, error) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	sess, err := h.store.ListPaidBetween(r.Context(), from, to)
	if err != nil {
		return reports.Summary{}, err
	}
	orders, err := h.drinkRepo.ListOrdersBetween(r.Context(), from, to)
	if err != nil {
		return reports.Summary{}, err
	}
	return reports.Build(from, to, sess, orders), nil
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	sum, err := h.buildReport(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) reportExport(w http.ResponseWriter, r *http.Request) {
	sum, err := h.buildReport(r)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	data, err := reports.Export(sum)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="relatorio_`+sum.From+`_`+sum.To+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) listDrinkProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.drinkRepo.ListProducts(r.Context(), r.URL.Query().Get("all") == "")
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, products)
}

type openOrderRequest struct {
	CustomerID   *string            `json:"customerId,omitempty"`
	CustomerName string             `json:"customerName"`
	Items        []drinks.OrderItem `json:"items"`
}

func (h *Handler) openDrinkOrder(w http.ResponseWriter, r *http.Request) {
	in, err := decode[openOrderRequest](r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	o, err := h.drinks.Open(r.Context(), in.CustomerID, in.CustomerName, in.Items)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, o)
}

func (h *Handler) addDrinkItems(w http.ResponseWriter, r *http.Request) {
	in, err := decode[[]drinks.OrderItem](r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	o, err := h.drinks.AddItems(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, o)
}

type closeOrderRequest struct {
	PaymentMethod sessions.PaymentMethod `json:"paymentMethod"`
}

func (h *Handler) closeDrinkOrder(w http.ResponseWriter, r *http.Request) {
	in, err := decode[closeOrderRequest](r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	o, err := h.drinks.Close(r.Context(), r.PathValue("id"), in.PaymentMethod)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, o)
}

func (h *Handler) cancelDrinkOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.drinks.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, o)
}
