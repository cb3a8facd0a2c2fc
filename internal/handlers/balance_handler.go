package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"splitease/internal/services"
)

// BalanceHandler exposes the balance aggregator.
type BalanceHandler struct {
	balanceService services.BalanceServicer
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceService services.BalanceServicer) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// GetGroupBalances handles the pairwise balance view of a group
// @Summary     Group balances
// @Description Get the persisted pairwise balances and every member's net position
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     200 {object} services.GroupBalances "Balances"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /groups/{id}/balances [get]
func (h *BalanceHandler) GetGroupBalances(c *gin.Context) {
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

	balances, err := h.balanceService.GetGroupBalances(groupID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, balances)
}

// GetMyBalance handles the caller's net position in a group
// @Summary     My balance
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     200 {object} services.NetBalance "Net balance"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /groups/{id}/balances/me [get]
func (h *BalanceHandler) GetMyBalance(c *gin.Context) {
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

	net, err := h.balanceService.GetNetBalance(groupID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": net})
}

// RecomputeBalances handles a member-triggered rebuild of a group's balances
// @Summary     Recompute balances
// @Description Rebuild the group's pairwise balances from its expenses
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Group ID"
// @Success     200 {array} models.Balance "Balances"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /groups/{id}/balances/recompute [post]
func (h *BalanceHandler) RecomputeBalances(c *gin.Context) {
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

	balances, err := h.balanceService.RecomputeGroupBalances(groupID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}

// GetSummary handles the caller's position across all their groups
// @Summary     Balance summary
// @Description Get the caller's net position in every group plus overall totals
// @Tags        balances
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.UserBalanceSummary "Summary"
// @Router      /balances/summary [get]
func (h *BalanceHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.balanceService.GetUserBalanceSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ServiceRecompute rebuilds a group's balances on behalf of a trusted caller.
// Mounted under /internal behind the service key.
func (h *BalanceHandler) ServiceRecompute(c *gin.Context) {
	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	balances, err := h.balanceService.RecomputeBalances(groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balances": balances})
}
