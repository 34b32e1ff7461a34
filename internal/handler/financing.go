package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dealerdesk/financing-engine/internal/domain"
	"github.com/dealerdesk/financing-engine/internal/service"
	customError "github.com/dealerdesk/financing-engine/pkg/errors"
	"github.com/dealerdesk/financing-engine/pkg/response"
)

type FinancingHandler struct {
	service   *service.FinancingService
	validator *validator.Validate
}

func NewFinancingHandler(service *service.FinancingService) *FinancingHandler {
	return &FinancingHandler{
		service:   service,
		validator: validator.New(),
	}
}

// RegisterUnit handles POST /api/v1/units
func (h *FinancingHandler) RegisterUnit(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterUnitRequest
	if !h.decode(w, r, &req) {
		return
	}

	unit, err := h.service.RegisterUnit(r.Context(), &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, unit)
}

// InitializeDebt handles POST /api/v1/units/{unitId}/debt/initialize
func (h *FinancingHandler) InitializeDebt(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	req := &domain.InitializeDebtRequest{}
	if r.ContentLength > 0 {
		if !h.decode(w, r, req) {
			return
		}
	}

	unit, err := h.service.InitializeDebt(r.Context(), unitID, req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, unit)
}

// InitializeInterestPeriod handles POST /api/v1/units/{unitId}/interest/initialize
func (h *FinancingHandler) InitializeInterestPeriod(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	var req domain.InitializePeriodRequest
	if !h.decode(w, r, &req) {
		return
	}

	period, err := h.service.InitializeInterestPeriod(r.Context(), unitID, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, period)
}

// UpdateInterestRate handles PUT /api/v1/units/{unitId}/interest/rate
func (h *FinancingHandler) UpdateInterestRate(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateRateRequest
	if !h.decode(w, r, &req) {
		return
	}

	period, err := h.service.UpdateInterestRate(r.Context(), unitID, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, period)
}

// StopInterestCalculation handles POST /api/v1/units/{unitId}/interest/stop
func (h *FinancingHandler) StopInterestCalculation(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	req := &domain.StopInterestRequest{}
	if r.ContentLength > 0 {
		if !h.decode(w, r, req) {
			return
		}
	}

	if err := h.service.StopInterestCalculation(r.Context(), unitID, req); err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, nil)
}

// ResumeInterestCalculation handles POST /api/v1/units/{unitId}/interest/resume
func (h *FinancingHandler) ResumeInterestCalculation(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	var req domain.ResumeInterestRequest
	if !h.decode(w, r, &req) {
		return
	}

	period, err := h.service.ResumeInterestCalculation(r.Context(), unitID, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, period)
}

// RecordDebtPayment handles POST /api/v1/units/{unitId}/debt/payments
func (h *FinancingHandler) RecordDebtPayment(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	var req domain.RecordPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.service.RecordDebtPayment(r.Context(), unitID, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Created(w, result)
}

// ListDebtPayments handles GET /api/v1/units/{unitId}/debt/payments
func (h *FinancingHandler) ListDebtPayments(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	payments, err := h.service.ListDebtPayments(r.Context(), unitID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, payments)
}

// GetStockInterestDetail handles GET /api/v1/units/{unitId}/interest
func (h *FinancingHandler) GetStockInterestDetail(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetStockInterestDetail(r.Context(), unitID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, detail)
}

// GetDebtSummary handles GET /api/v1/units/{unitId}/debt/summary
func (h *FinancingHandler) GetDebtSummary(w http.ResponseWriter, r *http.Request) {
	unitID, ok := h.unitID(w, r)
	if !ok {
		return
	}

	summary, err := h.service.GetDebtSummary(r.Context(), unitID)
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, summary)
}

// GetInterestStats handles GET /api/v1/stats/interest
func (h *FinancingHandler) GetInterestStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetInterestStats(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, stats)
}

// GetDebtStats handles GET /api/v1/stats/debt
func (h *FinancingHandler) GetDebtStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDebtStats(r.Context())
	if err != nil {
		writeBusinessError(w, err)
		return
	}

	response.Success(w, stats)
}

func (h *FinancingHandler) unitID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["unitId"]
	id, err := uuid.Parse(raw)
	if err != nil {
		response.BadRequest(w, "invalid unit id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *FinancingHandler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return false
	}
	if err := h.validator.Struct(dest); err != nil {
		response.BadRequest(w, "validation failed", err)
		return false
	}
	return true
}

// writeBusinessError maps the engine's typed errors onto HTTP statuses.
func writeBusinessError(w http.ResponseWriter, err error) {
	var bizErr *customError.BusinessError
	if !errors.As(err, &bizErr) {
		response.InternalServerError(w, "unexpected error", err)
		return
	}

	status := http.StatusInternalServerError
	switch bizErr.Code {
	case customError.ErrCodeNotFound:
		status = http.StatusNotFound
	case customError.ErrCodeAlreadyInitialized, customError.ErrCodeDebtAlreadyActive,
		customError.ErrCodeInvalidState, customError.ErrCodeConflict:
		status = http.StatusConflict
	case customError.ErrCodeAmountExceedsCeiling:
		status = http.StatusUnprocessableEntity
	}

	response.BusinessError(w, status, bizErr.Code, bizErr.Message, bizErr.Ceiling)
}
