/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/program"
	"crowdfund-ledger-go/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SignerHeader carries the comma separated identities that signed a request
const SignerHeader = "X-Signer"

type Handler struct {
	service *CampaignService
}

func NewHandler(service *CampaignService) *Handler {
	return &Handler{service: service}
}

type createCampaignRequest struct {
	Id           uint64    `json:"id"`
	Owner        string    `json:"owner"`
	FeeRecipient string    `json:"fee_recipient"`
	SoftCap      uint64    `json:"soft_cap"`
	HardCap      uint64    `json:"hard_cap"`
	Deadline     time.Time `json:"deadline"`
}

type addTierRequest struct {
	TierId       uint64 `json:"tier_id"`
	PledgeAmount uint64 `json:"pledge_amount"`
}

type contributeRequest struct {
	Contributor string `json:"contributor"`
	TierId      uint64 `json:"tier_id"`
	Amount      uint64 `json:"amount"`
}

// refundRequest without an index refunds every outstanding contribution of the contributor
type refundRequest struct {
	Contributor string `json:"contributor"`
	Index       *int   `json:"index,omitempty"`
	Amount      uint64 `json:"amount"`
}

type airdropRequest struct {
	Lamports uint64 `json:"lamports"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.service.HealthCheck(r.Context()); err != nil {
		zap.L().Error("Health check failed", zap.Error(err))
		respondWithJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "unhealthy"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	receipt, err := h.service.CreateCampaign(r.Context(), program.CreateParams{
		Id:           req.Id,
		Owner:        req.Owner,
		FeeRecipient: req.FeeRecipient,
		SoftCap:      req.SoftCap,
		HardCap:      req.HardCap,
		Deadline:     req.Deadline,
	})
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) AddTier(w http.ResponseWriter, r *http.Request) {
	var req addTierRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	receipt, err := h.service.AddTier(r.Context(), chi.URLParam(r, "address"), signers(r), req.TierId, req.PledgeAmount)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, receipt)
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.Publish(r.Context(), chi.URLParam(r, "address"), signers(r))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, receipt)
}

func (h *Handler) Contribute(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	receipt, err := h.service.Contribute(r.Context(), chi.URLParam(r, "address"), signers(r), req.Contributor, req.TierId, req.Amount)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, receipt)
}

func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	receipt, err := h.service.Finalize(r.Context(), chi.URLParam(r, "address"), signers(r))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, receipt)
}

func (h *Handler) Refund(w http.ResponseWriter, r *http.Request) {
	var req refundRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	address := chi.URLParam(r, "address")
	var err error
	var receipt *models.Receipt
	if req.Index == nil {
		receipt, err = h.service.RefundAll(r.Context(), address, signers(r), req.Contributor)
	} else {
		receipt, err = h.service.Refund(r.Context(), address, signers(r), req.Contributor, *req.Index, req.Amount)
	}
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, receipt)
}

func (h *Handler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.service.ListCampaigns(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, campaigns)
}

func (h *Handler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.service.GetCampaign(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, campaign)
}

func (h *Handler) ReconcileCampaign(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ReconcileCampaign(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	status := http.StatusOK
	if !result.Ok {
		status = http.StatusConflict
	}
	respondWithJSON(w, status, result)
}

func (h *Handler) GetTransfers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	transfers, err := h.service.GetTransfers(r.Context(), chi.URLParam(r, "address"), limit, offset)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transfers)
}

func (h *Handler) GetAccountBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.service.GetAccountBalance(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, balance)
}

func (h *Handler) Airdrop(w http.ResponseWriter, r *http.Request) {
	var req airdropRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	transfer, err := h.service.Airdrop(r.Context(), chi.URLParam(r, "address"), req.Lamports)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, transfer)
}

func signers(r *http.Request) []string {
	var out []string
	for _, s := range strings.Split(r.Header.Get(SignerHeader), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// statusFor maps a program or runtime error onto an HTTP status code
func statusFor(err error) int {
	switch program.KindOf(err) {
	case program.KindUnauthorized:
		return http.StatusForbidden
	case program.KindTierNotFound, program.KindContributionNotFound:
		return http.StatusNotFound
	case program.KindInvalidAmount, program.KindAmountMismatch, program.KindInsufficientEscrow:
		return http.StatusUnprocessableEntity
	case 0:
	default:
		return http.StatusConflict
	}

	switch {
	case errors.Is(err, store.ErrCampaignNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAccountInUse),
		errors.Is(err, store.ErrConcurrentModification),
		errors.Is(err, store.ErrDuplicateTransfer):
		return http.StatusConflict
	case errors.Is(err, store.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, program.ErrUnknownInstruction),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondWithError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	if kind := program.KindOf(err); kind != 0 {
		resp.Kind = kind.String()
	}
	if status == http.StatusInternalServerError {
		resp.Error = "internal error"
	}
	respondWithJSON(w, status, resp)
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		zap.L().Error("Failed to marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
