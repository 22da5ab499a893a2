package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/supplies"
	"github.com/DaniloBenetati/gestaodeatendimento/internal/domain/users"
)

var errForbidden = errors.New("operator not allowed")

// manageAllowed enforces the role gate on catalog, closure and staff
// routes. Session lifecycle routes are never gated: any front-desk
// operator runs those. Requests without an X-Operator header pass, the
// header is how the front end identifies who is acting.
func (h *Handler) manageAllowed(r *http.Request) error {
	username := r.Header.Get("X-Operator")
	if username == "" {
		return nil
	}
	u, err := h.operators.GetByUsername(r.Context(), username)
	if err != nil {
		return err
	}
	if u == nil || !u.Active {
		return fmt.Errorf("%w: unknown operator %s", errForbidden, username)
	}
	if !u.Role.CanManage() {
		return fmt.Errorf("%w: %s is %s", errForbidden, username, u.Role)
	}
	return nil
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	us, err := h.users.List(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, us)
}

func (h *Handler) addUser(w http.ResponseWriter, r *http.Request) {
	if err := h.manageAllowed(r); err != nil {
		h.writeErr(w, err)
		return
	}
	in, err := decode[users.User](r)
	if err != nil || in.Username == "" {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	if in.Role == "" {
		in.Role = users.RoleStaff
	}
	u, err := h.users.Add(r.Context(), in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	if err := h.manageAllowed(r); err != nil {
		h.writeErr(w, err)
		return
	}
	in, err := decode[users.User](r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	in.ID = r.PathValue("id")
	if err := h.users.Update(r.Context(), in); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, in)
}

func (h *Handler) listSupplies(w http.ResponseWriter, r *http.Request) {
	out, err := h.supplies.List(r.Context(), r.URL.Query().Get("all") == "")
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) addSupply(w http.ResponseWriter, r *http.Request) {
	if err := h.manageAllowed(r); err != nil {
		h.writeErr(w, err)
		return
	}
	in, err := decode[supplies.Supply](r)
	if err != nil || in.Name == "" {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	s, err := h.supplies.Add(r.Context(), in)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, s)
}

func (h *Handler) updateSupply(w http.ResponseWriter, r *http.Request) {
	if err := h.manageAllowed(r); err != nil {
		h.writeErr(w, err)
		return
	}
	in, err := decode[supplies.Supply](r)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	in.ID = r.PathValue("id")
	if err := h.supplies.Update(r.Context(), in); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, in)
}

type usageRequest struct {
	SupplyID string  `json:"supplyId"`
	Quantity float64 `json:"quantity"`
}

func (h *Handler) recordSupplyUsage(w http.ResponseWriter, r *http.Request) {
	in, err := decode[usageRequest](r)
	if err != nil || in.SupplyID == "" || in.Quantity <= 0 {
		h.writeJSON(w, http.StatusBadRequest, apiError{Error: "invalid body"})
		return
	}
	id := r.PathValue("id")
	if _, err := h.sessions.Get(r.Context(), id); err != nil {
		h.writeErr(w, err)
		return
	}
	sup, err := h.supplies.GetByID(r.Context(), in.SupplyID)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if sup == nil {
		h.writeJSON(w, http.StatusNotFound, apiError{Error: "supply not found"})
		return
	}
	u, err := h.supplies.RecordUsage(r.Context(), supplies.Usage{
		SessionID: id,
		SupplyID:  in.SupplyID,
		Quantity:  in.Quantity,
	})
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) listSupplyUsage(w http.ResponseWriter, r *http.Request) {
	out, err := h.supplies.UsageBySession(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, out)
}
