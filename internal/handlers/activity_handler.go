package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"splitease/internal/services"
)

// ActivityHandler serves the activity feeds.
type ActivityHandler struct {
	activityService services.ActivityServicer
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityService services.ActivityServicer) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// ListGroupActivities handles a group's feed
// @Summary     Group activity
// @Description Get a group's activity feed, newest first
// @Tags        activities
// @Produce     json
// @Security    BearerAuth
// @Param       id        path  string true  "Group ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Activity] "Paginated activity"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /groups/{id}/activities [get]
func (h *ActivityHandler) ListGroupActivities(c *gin.Context) {
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

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.activityService.ListGroupActivities(groupID, userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListMyActivities handles the caller's feed across all groups
// @Summary     My activity
// @Tags        activities
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Activity] "Paginated activity"
// @Router      /activities [get]
func (h *ActivityHandler) ListMyActivities(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.activityService.ListUserActivities(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
