package handlers

import (
	"context"
	"net/http"

	"github.com/Bedrock-Technology/uniBTC/internal/core/application"
	"github.com/Bedrock-Technology/uniBTC/internal/interface/http/middleware"
	"github.com/gorilla/mux"
)

// AdminHandler exposes the operator and treasury surface. Role checks live
// in the application layer, the handler only shuttles the caller through.
type AdminHandler struct {
	svc application.AdminService
}

func NewAdminHandler(svc application.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) Register(router *mux.Router) {
	router.HandleFunc("/tokens", h.registerToken).Methods(http.MethodPost)
	router.HandleFunc("/tokens/list", h.listTokens).Methods(http.MethodPost)
	router.HandleFunc("/tokens/unlist", h.unlistTokens).Methods(http.MethodPost)
	router.HandleFunc("/tokens/pause", h.pauseTokens).Methods(http.MethodPost)
	router.HandleFunc("/tokens/unpause", h.unpauseTokens).Methods(http.MethodPost)
	router.HandleFunc("/tokens/{address}/quota-rate", h.setQuotaRate).Methods(http.MethodPut)
	router.HandleFunc("/tokens/{address}/max-free-quota", h.setMaxFreeQuota).
		Methods(http.MethodPut)

	router.HandleFunc("/settings/fee-rate", h.setFeeRate).Methods(http.MethodPut)
	router.HandleFunc("/settings/redeem-delay", h.setRedeemDelay).Methods(http.MethodPut)
	router.HandleFunc("/settings/principal-delay", h.setPrincipalDelay).Methods(http.MethodPut)

	router.HandleFunc("/policy/whitelist", h.addToWhitelist).Methods(http.MethodPost)
	router.HandleFunc("/policy/whitelist/remove", h.removeFromWhitelist).
		Methods(http.MethodPost)
	router.HandleFunc("/policy/blacklist", h.addToBlacklist).Methods(http.MethodPost)
	router.HandleFunc("/policy/blacklist/remove", h.removeFromBlacklist).
		Methods(http.MethodPost)
	router.HandleFunc("/policy/whitelist-enabled", h.setWhitelistEnabled).
		Methods(http.MethodPut)

	router.HandleFunc("/fees/withdraw", h.withdrawFee).Methods(http.MethodPost)
}

func (h *AdminHandler) registerToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address        string `json:"address"`
		QuotaPerSecond uint64 `json:"quotaPerSecond"`
		MaxFreeQuota   uint64 `json:"maxFreeQuota"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := h.svc.RegisterToken(
		r.Context(), caller, req.Address, req.QuotaPerSecond, req.MaxFreeQuota,
	); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nil)
}

func (h *AdminHandler) listTokens(w http.ResponseWriter, r *http.Request) {
	h.tokenBatch(w, r, h.svc.AddWrappedAssets)
}

func (h *AdminHandler) unlistTokens(w http.ResponseWriter, r *http.Request) {
	h.tokenBatch(w, r, h.svc.RemoveWrappedAssets)
}

func (h *AdminHandler) pauseTokens(w http.ResponseWriter, r *http.Request) {
	h.tokenBatch(w, r, h.svc.PauseTokens)
}

func (h *AdminHandler) unpauseTokens(w http.ResponseWriter, r *http.Request) {
	h.tokenBatch(w, r, h.svc.UnpauseTokens)
}

func (h *AdminHandler) setQuotaRate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rate uint64 `json:"rate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := h.svc.SetQuotaPerSecond(
		r.Context(), caller, mux.Vars(r)["address"], req.Rate,
	); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *AdminHandler) setMaxFreeQuota(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quota uint64 `json:"quota"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := h.svc.SetMaxFreeQuota(
		r.Context(), caller, mux.Vars(r)["address"], req.Quota,
	); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *AdminHandler) setFeeRate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rate uint64 `json:"rate"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := h.svc.SetRedeemFeeRate(r.Context(), caller, req.Rate); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *AdminHandler) setRedeemDelay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delay int64 `json:"delay"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := h.svc.SetRedeemDelay(r.Context(), caller, req.Delay); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *AdminHandler) setPrincipalDelay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delay int64 `json:"delay"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := h.svc.SetRedeemPrincipalDelay(r.Context(), caller, req.Delay); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *AdminHandler) addToWhitelist(w http.ResponseWriter, r *http.Request) {
	h.accountBatch(w, r, h.svc.AddToWhitelist)
}

func (h *AdminHandler) removeFromWhitelist(w http.ResponseWriter, r *http.Request) {
	h.accountBatch(w, r, h.svc.RemoveFromWhitelist)
}

func (h *AdminHandler) addToBlacklist(w http.ResponseWriter, r *http.Request) {
	h.accountBatch(w, r, h.svc.AddToBlacklist)
}

func (h *AdminHandler) removeFromBlacklist(w http.ResponseWriter, r *http.Request) {
	h.accountBatch(w, r, h.svc.RemoveFromBlacklist)
}

func (h *AdminHandler) setWhitelistEnabled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := h.svc.SetWhitelistEnabled(r.Context(), caller, req.Enabled); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *AdminHandler) withdrawFee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Recipient string `json:"recipient"`
		Amount    uint64 `json:"amount"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := h.svc.WithdrawManagementFee(
		r.Context(), caller, req.Recipient, req.Amount,
	); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

type batchOp func(ctx context.Context, caller application.Caller, items []string) error

func (h *AdminHandler) tokenBatch(w http.ResponseWriter, r *http.Request, op batchOp) {
	var req struct {
		Tokens []string `json:"tokens"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := op(r.Context(), caller, req.Tokens); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}

func (h *AdminHandler) accountBatch(w http.ResponseWriter, r *http.Request, op batchOp) {
	var req struct {
		Accounts []string `json:"accounts"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller := middleware.CallerFromContext(r.Context())
	if err := op(r.Context(), caller, req.Accounts); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
