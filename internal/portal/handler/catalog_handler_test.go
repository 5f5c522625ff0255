package handler_test

import (
	"net/http"
	"testing"

	"github.com/bitfantasy/seapod-portal/internal/portal/handler"
	"github.com/bitfantasy/seapod-portal/internal/portal/repository"
	"github.com/bitfantasy/seapod-portal/internal/portal/service"
	"github.com/bitfantasy/seapod-portal/internal/portal/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCatalogRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := service.NewCatalogService(repos.Item, repos.Kit, repos.Template, zap.NewNop())
	h := handler.NewCatalogHandler(svc)

	r := testutil.SetupRouter()
	api := testutil.AuthGroup(r, "/api/v1")
	api.GET("/items", h.ListItems)
	api.POST("/items", h.CreateItem)
	api.PUT("/items/:id", h.UpdateItem)
	api.DELETE("/items/:id", h.DeleteItem)
	return r, db
}

func TestCreateAndListItems(t *testing.T) {
	r, _ := setupCatalogRouter(t)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"sku":   "SP-CBL-01",
		"name":  "Antenna Cable",
		"price": 42.5,
	}, testutil.AdminToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("create item: expected 201, got %d body=%s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/items", nil, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("list items: expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0].(map[string]interface{})
	if item["price"].(float64) != 42.5 {
		t.Fatalf("admin should see the price, got %v", item["price"])
	}
}

func TestListItemsHidesPriceFromVendor(t *testing.T) {
	r, _ := setupCatalogRouter(t)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"sku":   "SP-SEN-02",
		"name":  "Depth Sensor",
		"price": 199.0,
	}, testutil.AdminToken())
	if w.Code != http.StatusCreated {
		t.Fatalf("create item: expected 201, got %d", w.Code)
	}

	w = testutil.DoRequest(r, http.MethodGet, "/api/v1/items", nil, testutil.VendorToken())
	if w.Code != http.StatusOK {
		t.Fatalf("list items: expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	item := data["items"].([]interface{})[0].(map[string]interface{})
	if item["price"].(float64) != 0 {
		t.Fatalf("vendor must not see prices, got %v", item["price"])
	}
}

func TestCreateItemVendorForbidden(t *testing.T) {
	r, _ := setupCatalogRouter(t)

	w := testutil.DoRequest(r, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"sku":  "SP-X",
		"name": "Nope",
	}, testutil.VendorToken())
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for vendor, got %d", w.Code)
	}
}

func TestItemsRequireAuth(t *testing.T) {
	r, _ := setupCatalogRouter(t)

	w := testutil.DoRequest(r, http.MethodGet, "/api/v1/items", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}
