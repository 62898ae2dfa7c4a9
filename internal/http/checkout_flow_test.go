package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/nnamdiindu/cara-store/internal/domain"
	"github.com/nnamdiindu/cara-store/internal/http/handlers"
	"github.com/nnamdiindu/cara-store/internal/paystack"
	"github.com/nnamdiindu/cara-store/internal/repos"
)

// mockGateway simulates the remote payment provider over HTTP so the real
// client code (auth transport, JSON decode) is on the wire in the test.
type mockGateway struct {
	*httptest.Server
	initOK       bool
	verifyStatus string
	initCount    int
	verifyCount  int
}

func newMockGateway(t *testing.T) *mockGateway {
	t.Helper()
	g := &mockGateway{initOK: true, verifyStatus: "success"}
	g.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk_test_abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch {
		case r.URL.Path == "/transaction/initialize":
			g.initCount++
			if !g.initOK {
				json.NewEncoder(w).Encode(paystack.InitResponse{Status: false, Message: "declined"})
				return
			}
			json.NewEncoder(w).Encode(paystack.InitResponse{
				Status: true,
				Data: paystack.InitData{
					Reference:        "ref-flow-" + strconv.Itoa(g.initCount),
					AuthorizationURL: g.URL + "/hosted/ref-flow-" + strconv.Itoa(g.initCount),
				},
			})
		case strings.HasPrefix(r.URL.Path, "/transaction/verify/"):
			g.verifyCount++
			ref := strings.TrimPrefix(r.URL.Path, "/transaction/verify/")
			json.NewEncoder(w).Encode(paystack.VerifyResponse{
				Status: true,
				Data: paystack.VerifyData{
					Status:    g.verifyStatus,
					Reference: ref,
					PaidAt:    "2025-05-01T12:00:00Z",
					Channel:   "card",
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(g.Close)
	return g
}

func paymentForm(email string, collectionID int64, qty int) *strings.Reader {
	v := url.Values{}
	v.Set("email", email)
	v.Set("collection_id", strconv.FormatInt(collectionID, 10))
	v.Set("quantity", strconv.Itoa(qty))
	return strings.NewReader(v.Encode())
}

func TestCheckoutFlowEndToEnd(t *testing.T) {
	app, db, authSvc := newTestApp(t)
	gw := newMockGateway(t)
	client := paystack.NewClient(paystack.Config{BaseURL: gw.URL, SecretKey: "sk_test_abc"})

	deps := handlers.NewDeps(db, client, authSvc)
	app.Post("/process-payment", handlers.RequireUser(authSvc), deps.CheckoutHandler.Process)
	app.Get("/payment/callback", deps.CheckoutHandler.Callback)

	sid := loginSID(t, authSvc, "buyer@example.com")

	// seeded collection at a known price
	colRepo := repos.NewCollectionRepo(db)
	colID, err := colRepo.Create(domain.Collection{
		BrandName: "Flowline", Description: "d", Filename: "f.png",
		Amount: 10.00, Data: []byte{1}, Mimetype: "image/png",
	})
	if err != nil {
		t.Fatal(err)
	}

	// initiate: quantity 3 at 10.00
	req := httptest.NewRequest("POST", "/process-payment", paymentForm("buyer@example.com", colID, 3))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("want redirect to gateway, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, gw.URL+"/hosted/") {
		t.Fatalf("redirect not to hosted payment page: %s", loc)
	}

	var o domain.Order
	if err := db.Get(&o, `SELECT id,email,amount,reference,status,COALESCE(paid_at,'') AS paid_at,user_id,collection_id,created_at FROM orders WHERE reference='ref-flow-1'`); err != nil {
		t.Fatal(err)
	}
	if o.Status != domain.OrderPending || o.Amount != 30.00 {
		t.Fatalf("bad pending order: %+v", o)
	}

	// gateway redirects the buyer back
	cbResp, err := app.Test(httptest.NewRequest("GET", "/payment/callback?reference=ref-flow-1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if cbResp.StatusCode != http.StatusOK {
		t.Fatalf("callback: %d", cbResp.StatusCode)
	}
	page, _ := io.ReadAll(cbResp.Body)
	if !strings.Contains(string(page), "ref-flow-1") {
		t.Fatal("success page missing transaction reference")
	}

	var status string
	if err := db.Get(&status, `SELECT status FROM orders WHERE reference='ref-flow-1'`); err != nil {
		t.Fatal(err)
	}
	if status != domain.OrderCompleted {
		t.Fatalf("order not completed: %s", status)
	}

	// replaying the callback is safe: still 200, still exactly one
	// completed order
	cb2, err := app.Test(httptest.NewRequest("GET", "/payment/callback?reference=ref-flow-1", nil))
	if err != nil {
		t.Fatal(err)
	}
	if cb2.StatusCode != http.StatusOK {
		t.Fatalf("replayed callback: %d", cb2.StatusCode)
	}
	var completed int
	if err := db.Get(&completed, `SELECT COUNT(*) FROM orders WHERE status='completed'`); err != nil {
		t.Fatal(err)
	}
	if completed != 1 {
		t.Fatalf("replay duplicated completion: %d", completed)
	}
}

func TestProcessPaymentGatewayDecline(t *testing.T) {
	app, db, authSvc := newTestApp(t)
	gw := newMockGateway(t)
	gw.initOK = false
	client := paystack.NewClient(paystack.Config{BaseURL: gw.URL, SecretKey: "sk_test_abc"})

	deps := handlers.NewDeps(db, client, authSvc)
	app.Post("/process-payment", handlers.RequireUser(authSvc), deps.CheckoutHandler.Process)

	sid := loginSID(t, authSvc, "buyer@example.com")

	var colID int64
	if err := db.Get(&colID, `SELECT id FROM collections LIMIT 1`); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("POST", "/process-payment", paymentForm("buyer@example.com", colID, 1))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	// buyer is shown the checkout page again with a retry prompt
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("want re-rendered checkout, got %d", resp.StatusCode)
	}
	page, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(page), "Payment initialization failed") {
		t.Fatal("missing retry prompt")
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("declined init wrote %d orders", n)
	}
}

func TestProcessPaymentUnknownCollection(t *testing.T) {
	app, db, authSvc := newTestApp(t)
	gw := newMockGateway(t)
	client := paystack.NewClient(paystack.Config{BaseURL: gw.URL, SecretKey: "sk_test_abc"})

	deps := handlers.NewDeps(db, client, authSvc)
	app.Post("/process-payment", handlers.RequireUser(authSvc), deps.CheckoutHandler.Process)

	sid := loginSID(t, authSvc, "buyer@example.com")

	req := httptest.NewRequest("POST", "/process-payment", paymentForm("buyer@example.com", 9999, 1))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 for unknown collection, got %d", resp.StatusCode)
	}
	if gw.initCount != 0 {
		t.Fatal("gateway called for an unknown collection")
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("unknown collection wrote %d orders", n)
	}
}

func TestCallbackMissingReference(t *testing.T) {
	app, db, authSvc := newTestApp(t)
	gw := newMockGateway(t)
	client := paystack.NewClient(paystack.Config{BaseURL: gw.URL, SecretKey: "sk_test_abc"})

	deps := handlers.NewDeps(db, client, authSvc)
	app.Get("/payment/callback", deps.CheckoutHandler.Callback)

	resp, err := app.Test(httptest.NewRequest("GET", "/payment/callback", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("want 400 without reference, got %d", resp.StatusCode)
	}
	if gw.verifyCount != 0 {
		t.Fatal("verify called without a reference")
	}
}

func TestCallbackUnknownReference(t *testing.T) {
	app, db, authSvc := newTestApp(t)
	gw := newMockGateway(t)
	client := paystack.NewClient(paystack.Config{BaseURL: gw.URL, SecretKey: "sk_test_abc"})

	deps := handlers.NewDeps(db, client, authSvc)
	app.Get("/payment/callback", deps.CheckoutHandler.Callback)

	resp, err := app.Test(httptest.NewRequest("GET", "/payment/callback?reference=ref-ghost", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("want 404 for unknown reference, got %d", resp.StatusCode)
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM orders WHERE status != 'pending'`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("unknown reference changed %d orders", n)
	}
}

func TestProcessPaymentRequiresLogin(t *testing.T) {
	app, db, authSvc := newTestApp(t)
	deps := handlers.NewDeps(db, nil, authSvc)
	app.Post("/process-payment", handlers.RequireUser(authSvc), deps.CheckoutHandler.Process)

	req := httptest.NewRequest("POST", "/process-payment", paymentForm("buyer@example.com", 1, 1))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("anonymous checkout not redirected to login: %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
}
