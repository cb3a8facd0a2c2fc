package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	apperrors "splitease/internal/errors"
	"splitease/internal/models"
	"splitease/internal/pagination"
	"splitease/internal/services"
)

type mockActivityService struct {
	listGroupFn func(groupID, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Activity], error)
	listUserFn  func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Activity], error)
}

var _ services.ActivityServicer = (*mockActivityService)(nil)

func (m *mockActivityService) Record(_ *gorm.DB, _ services.ActivityEntry) error { return nil }

func (m *mockActivityService) ListGroupActivities(groupID, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Activity], error) {
	if m.listGroupFn != nil {
		return m.listGroupFn(groupID, userID, page)
	}
	resp := pagination.NewPageResponse([]models.Activity{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockActivityService) ListUserActivities(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Activity], error) {
	if m.listUserFn != nil {
		return m.listUserFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Activity{}, 1, 20, 0)
	return &resp, nil
}

func setupActivityRouter(handler *ActivityHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/groups/:id/activities", handler.ListGroupActivities)
	auth.GET("/activities", handler.ListMyActivities)
	return r
}

func TestActivityHandler_ListGroupActivities(t *testing.T) {
	t.Run("returns the feed", func(t *testing.T) {
		svc := &mockActivityService{
			listGroupFn: func(groupID, _ string, _ pagination.PageRequest) (*pagination.PageResponse[models.Activity], error) {
				items := []models.Activity{{GroupID: groupID, Type: models.ActivityExpenseAdded, Description: `Added "Taxi" for $12.00`}}
				resp := pagination.NewPageResponse(items, 1, 20, 1)
				return &resp, nil
			},
		}
		r := setupActivityRouter(NewActivityHandler(svc))

		rec := doRequest(r, "GET", "/groups/"+testGroupID+"/activities", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		data := parseJSON(t, rec)["data"].([]interface{})
		if len(data) != 1 || data[0].(map[string]interface{})["type"] != "expense_added" {
			t.Errorf("unexpected feed %v", data)
		}
	})

	t.Run("returns 403 for non-members", func(t *testing.T) {
		svc := &mockActivityService{
			listGroupFn: func(_, _ string, _ pagination.PageRequest) (*pagination.PageResponse[models.Activity], error) {
				return nil, apperrors.ErrNotGroupMember
			},
		}
		r := setupActivityRouter(NewActivityHandler(svc))

		rec := doRequest(r, "GET", "/groups/"+testGroupID+"/activities", "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

func TestActivityHandler_ListMyActivities(t *testing.T) {
	var gotPage pagination.PageRequest
	svc := &mockActivityService{
		listUserFn: func(_ string, page pagination.PageRequest) (*pagination.PageResponse[models.Activity], error) {
			gotPage = page
			resp := pagination.NewPageResponse([]models.Activity{}, 1, 20, 0)
			return &resp, nil
		},
	}
	r := setupActivityRouter(NewActivityHandler(svc))

	rec := doRequest(r, "GET", "/activities?page=3&page_size=10", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotPage.Page != 3 || gotPage.PageSize != 10 {
		t.Errorf("expected page 3 size 10, got %+v", gotPage)
	}
}
