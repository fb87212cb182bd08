package handlers

import (
	"net/http"
	"strconv"

	"github.com/Bedrock-Technology/uniBTC/internal/core/application"
	"github.com/Bedrock-Technology/uniBTC/internal/interface/http/middleware"
	"github.com/Bedrock-Technology/uniBTC/pkg/errors"
	"github.com/gorilla/mux"
)

// UserHandler exposes the redemption lifecycle and the public read views.
type UserHandler struct {
	svc application.Service
}

func NewUserHandler(svc application.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) Register(router *mux.Router) {
	router.HandleFunc("/redeems", h.createRedeem).Methods(http.MethodPost)
	router.HandleFunc("/redeems/claim", h.claimRedeems).Methods(http.MethodPost)
	router.HandleFunc("/redeems/{index}/claim", h.claimRedeemByIndex).Methods(http.MethodPost)
	router.HandleFunc("/redeems/principal/claim", h.claimPrincipals).Methods(http.MethodPost)

	router.HandleFunc("/users/{account}/redeems", h.getRedeems).Methods(http.MethodGet)
	router.HandleFunc("/users/{account}/redeems/length", h.getRedeemsLength).
		Methods(http.MethodGet)
	router.HandleFunc("/users/{account}/redeems/{index}", h.getRedeemByIndex).
		Methods(http.MethodGet)
	router.HandleFunc("/users/{account}/redeems/{index}/claimable", h.getClaimable).
		Methods(http.MethodGet)
	router.HandleFunc(
		"/users/{account}/redeems/{index}/principal-claimable", h.getPrincipalClaimable,
	).Methods(http.MethodGet)

	router.HandleFunc("/tokens", h.getTokens).Methods(http.MethodGet)
	router.HandleFunc("/tokens/{address}", h.getToken).Methods(http.MethodGet)
	router.HandleFunc("/tokens/{address}/quota", h.getQuota).Methods(http.MethodGet)
	router.HandleFunc("/tokens/{address}/debt", h.getDebt).Methods(http.MethodGet)
	router.HandleFunc("/debts", h.getDebts).Methods(http.MethodGet)
	router.HandleFunc("/settings", h.getSettings).Methods(http.MethodGet)
	router.HandleFunc("/policy", h.getPolicy).Methods(http.MethodGet)
	router.HandleFunc("/fees/balance", h.getFeeBalance).Methods(http.MethodGet)
}

func (h *UserHandler) createRedeem(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller.Account == "" {
		writeError(w, errors.UNAUTHORIZED.New("missing account header"))
		return
	}

	var req struct {
		Token  string `json:"token"`
		Amount uint64 `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	index, err := h.svc.CreateDelayedRedeem(r.Context(), caller, req.Token, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"index": index})
}

func (h *UserHandler) claimRedeems(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller.Account == "" {
		writeError(w, errors.UNAUTHORIZED.New("missing account header"))
		return
	}
	summary, err := h.svc.ClaimDelayedRedeems(r.Context(), caller.Account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *UserHandler) claimRedeemByIndex(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller.Account == "" {
		writeError(w, errors.UNAUTHORIZED.New("missing account header"))
		return
	}
	index, err := parseIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := h.svc.ClaimDelayedRedeemByIndex(r.Context(), caller.Account, index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *UserHandler) claimPrincipals(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller.Account == "" {
		writeError(w, errors.UNAUTHORIZED.New("missing account header"))
		return
	}
	summary, err := h.svc.ClaimPrincipals(r.Context(), caller.Account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *UserHandler) getRedeems(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]
	redeems, err := h.svc.GetUserDelayedRedeems(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"redeems": redeems})
}

func (h *UserHandler) getRedeemsLength(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]
	length, err := h.svc.UserRedeemsLength(r.Context(), account)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"length": length})
}

func (h *UserHandler) getRedeemByIndex(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]
	index, err := parseIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	redeem, err := h.svc.UserRedeemByIndex(r.Context(), account, index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, redeem)
}

func (h *UserHandler) getClaimable(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]
	index, err := parseIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	claimable, err := h.svc.CanClaimDelayedRedeem(r.Context(), account, index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"claimable": claimable})
}

func (h *UserHandler) getPrincipalClaimable(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]
	index, err := parseIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}
	claimable, err := h.svc.CanClaimDelayedRedeemPrincipal(r.Context(), account, index)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"claimable": claimable})
}

func (h *UserHandler) getTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.svc.GetTokens(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tokens": tokens})
}

func (h *UserHandler) getToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.svc.GetToken(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, token)
}

func (h *UserHandler) getQuota(w http.ResponseWriter, r *http.Request) {
	available, err := h.svc.QuotaAvailable(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"available": available})
}

func (h *UserHandler) getDebt(w http.ResponseWriter, r *http.Request) {
	debt, err := h.svc.GetTokenDebt(r.Context(), mux.Vars(r)["address"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, debt)
}

func (h *UserHandler) getDebts(w http.ResponseWriter, r *http.Request) {
	debts, err := h.svc.GetTokenDebts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"debts": debts})
}

func (h *UserHandler) getSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.GetSettings(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *UserHandler) getPolicy(w http.ResponseWriter, r *http.Request) {
	policy, err := h.svc.GetPolicy(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, policy)
}

func (h *UserHandler) getFeeBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.svc.ManagementFeeBalance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"balance": balance})
}

func parseIndex(r *http.Request) (uint64, error) {
	raw := mux.Vars(r)["index"]
	index, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.INVALID_INPUT.New("invalid index %q", raw)
	}
	return index, nil
}
