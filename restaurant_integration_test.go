package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/comanda-app/database"
	"github.com/yeremiapane/comanda-app/kds"
	"github.com/yeremiapane/comanda-app/models"
	"github.com/yeremiapane/comanda-app/router"
	"github.com/yeremiapane/comanda-app/store"
	"github.com/yeremiapane/comanda-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger("warn")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndIntegration walks one evening at table 1:
// 0. Seed the demo restaurant and log in as the waiter
// 1. Open a tab for João
// 2. Order two X-Burgers
// 3. Deliver the order, which takes the recipe out of stock
// 4. Close the tab with a 10% discount paid by PIX
// 5. Print the receipt
func TestEndToEndIntegration(t *testing.T) {
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	demo, err := database.SeedDemo(db)
	require.NoError(t, err)

	r := router.SetupRouter(router.Deps{Store: store.NewGormStore(db), Hub: kds.NewHub()})

	token := loginTest(t, r, "garcom@comanda.local")
	admin := loginTest(t, r, "admin@comanda.local")

	var tab models.Tab
	call(t, r, http.MethodPost, "/api/tabs", token, gin.H{
		"table_id":  demo.Tables[0].ID,
		"waiter_id": demo.Waiters[0].ID,
	}, http.StatusCreated, &tab)
	assert.Equal(t, "C001", tab.Code)

	var table models.Table
	call(t, r, http.MethodGet, "/api/tables/"+demo.Tables[0].ID, token, nil, http.StatusOK, &table)
	assert.Equal(t, models.TableOccupied, table.Status)

	var order models.Order
	call(t, r, http.MethodPost, "/api/orders", token, gin.H{
		"tab_id": tab.ID,
		"items":  []gin.H{{"menu_item_id": demo.MenuItems[0].ID, "quantity": 2}},
	}, http.StatusCreated, &order)

	call(t, r, http.MethodPatch, "/api/orders/"+order.ID+"/status", token, gin.H{"status": "DELIVERED"}, http.StatusOK, &order)
	assert.Equal(t, models.OrderDelivered, order.Status)

	for i, want := range []string{"48", "9.7", "4.94", "48"} {
		var item models.StockItem
		call(t, r, http.MethodGet, "/api/stock/"+demo.Stock[i].ID, admin, nil, http.StatusOK, &item)
		assert.True(t, decimal.RequireFromString(want).Equal(item.Quantity), "%s: %s", item.Name, item.Quantity)
	}

	call(t, r, http.MethodPost, "/api/tabs/"+tab.ID+"/close", token, gin.H{
		"payment_method": "PIX",
		"discount_type":  "percentage",
		"discount_value": 10,
	}, http.StatusOK, &tab)
	assert.Equal(t, models.TabClosed, tab.Status)
	assert.True(t, decimal.RequireFromString("5.78").Equal(tab.Discount), tab.Discount.String())
	assert.True(t, decimal.RequireFromString("52.02").Equal(tab.TotalAmount), tab.TotalAmount.String())
	require.NotNil(t, tab.PaymentMethod)
	assert.Equal(t, models.PaymentPix, *tab.PaymentMethod)

	call(t, r, http.MethodGet, "/api/tables/"+demo.Tables[0].ID, token, nil, http.StatusOK, &table)
	assert.Equal(t, models.TableAvailable, table.Status)

	w := do(t, r, http.MethodGet, "/api/tabs/"+tab.ID+"/receipt.pdf", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func loginTest(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	var data struct {
		Token string `json:"token"`
	}
	call(t, r, http.MethodPost, "/login", "", gin.H{"email": email, "password": database.DemoPassword}, http.StatusOK, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func do(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// call performs the request, expects code and decodes the envelope's data.
func call(t *testing.T, r *gin.Engine, method, path, token string, body interface{}, code int, out interface{}) {
	t.Helper()
	w := do(t, r, method, path, token, body)
	require.Equal(t, code, w.Code, w.Body.String())
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
}
