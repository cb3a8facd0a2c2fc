package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "splitease/internal/errors"
	"splitease/internal/services"
)

// SettlementHandler handles settlement planning and the settlement ledger.
type SettlementHandler struct {
	settlementService services.SettlementServicer
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementService services.SettlementServicer) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService}
}

// CreateSettlementRequest represents a manually recorded settlement
type CreateSettlementRequest struct {
	PayerID string          `json:"payer_id" binding:"required,uuid"`
	PayeeID string          `json:"payee_id" binding:"required,uuid"`
	Amount  decimal.Decimal `json:"amount" swaggertype:"string" example:"25.00"`
}

// PreviewSettlements handles computing a settlement plan without saving it
// @Summary     Preview settlements
// @Description Recompute balances and return the minimal set of transfers that settles the group
// @Tags        settlements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     200 {array} ledger.Transfer "Proposed transfers"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /groups/{id}/settlements/preview [get]
func (h *SettlementHandler) PreviewSettlements(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transfers, err := h.settlementService.PreviewSettlements(groupID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transfers": transfers})
}

// ConfirmSettlements handles saving a fresh settlement plan
// @Summary     Confirm settlements
// @Description Replace the group's pending settlements with a freshly computed plan
// @Tags        settlements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     201 {array} models.Settlement "Pending settlements"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /groups/{id}/settlements/confirm [post]
func (h *SettlementHandler) ConfirmSettlements(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	settlements, err := h.settlementService.ConfirmSettlements(groupID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"settlements": settlements})
}

// CreateSettlement handles recording a one-off settlement
// @Summary     Record settlement
// @Tags        settlements
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Group ID"
// @Param       request body CreateSettlementRequest true "Settlement details"
// @Success     201 {object} models.Settlement "Settlement created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /groups/{id}/settlements [post]
func (h *SettlementHandler) CreateSettlement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	settlement, err := h.settlementService.CreateSettlement(groupID, userID, req.PayerID, req.PayeeID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"settlement": settlement})
}

// ListSettlements handles listing a group's settlements
// @Summary     List settlements
// @Tags        settlements
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Group ID"
// @Param       status    query string false "pending (default) or completed"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Settlement] "Paginated settlements"
// @Failure     400 {object} ErrorResponse "Invalid status"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /groups/{id}/settlements [get]
func (h *SettlementHandler) ListSettlements(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var completed bool
	switch c.DefaultQuery("status", "pending") {
	case "pending":
	case "completed":
		completed = true
	default:
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be pending or completed"))
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.settlementService.ListSettlements(groupID, userID, completed, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSettlement handles retrieving a single settlement
// @Summary     Get settlement
// @Tags        settlements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Settlement ID"
// @Success     200 {object} models.Settlement "Settlement"
// @Failure     404 {object} ErrorResponse "Settlement not found"
// @Router      /settlements/{id} [get]
func (h *SettlementHandler) GetSettlement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settlementID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	settlement, err := h.settlementService.GetSettlement(settlementID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settlement": settlement})
}

// CompleteSettlement handles marking a settlement as paid
// @Summary     Complete settlement
// @Description Mark a pending settlement as completed (payer or payee only)
// @Tags        settlements
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Settlement ID"
// @Success     200 {object} models.Settlement "Settlement completed"
// @Failure     403 {object} ErrorResponse "Not a party to the settlement"
// @Failure     409 {object} ErrorResponse "Already completed"
// @Router      /settlements/{id}/complete [post]
func (h *SettlementHandler) CompleteSettlement(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	settlementID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	settlement, err := h.settlementService.MarkSettlementComplete(settlementID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settlement": settlement})
}
