package integration

import (
	"testing"
)

// TestCreateOrderEmptyCart verifies that an order cannot be created from an
// empty cart.
func TestCreateOrderEmptyCart(t *testing.T) {
	skipIfNotRunning(t)

	_, token := registerAndLogin(t)

	status, data := httpPostWithAuth(t, serverURL()+"/api/v1/orders", nil, token)
	if status != 400 {
		t.Fatalf("expected status 400 for empty-cart order, got %d; body: %v", status, data)
	}
}

// TestListMyOrdersEmpty verifies that a fresh user has an empty order history.
func TestListMyOrdersEmpty(t *testing.T) {
	skipIfNotRunning(t)

	_, token := registerAndLogin(t)

	status, data := httpGetWithAuth(t, serverURL()+"/api/v1/orders", token)
	requireStatus(t, status, 200)

	if tc, ok := data["total_count"].(float64); !ok || tc != 0 {
		t.Fatalf("expected total_count 0 for fresh user, got %v", data["total_count"])
	}
}

// TestGetUnknownOrder verifies that a missing order returns 404.
func TestGetUnknownOrder(t *testing.T) {
	skipIfNotRunning(t)

	_, token := registerAndLogin(t)

	status, _ := httpGetWithAuth(t, serverURL()+"/api/v1/orders/550e8400-e29b-41d4-a716-446655449999", token)
	requireStatus(t, status, 404)
}

// TestOrdersRequireAuth verifies that order endpoints reject anonymous callers.
func TestOrdersRequireAuth(t *testing.T) {
	skipIfNotRunning(t)

	status, _ := httpGet(t, serverURL()+"/api/v1/orders")
	requireStatus(t, status, 401)

	status2, _ := httpPost(t, serverURL()+"/api/v1/orders", nil)
	requireStatus(t, status2, 401)
}

// TestConfirmPaymentUnknownOrder verifies the manual confirmation path
// returns 404 for an order the caller does not own.
func TestConfirmPaymentUnknownOrder(t *testing.T) {
	skipIfNotRunning(t)

	_, token := registerAndLogin(t)

	body := map[string]interface{}{
		"session_id": "cs_test_unknown",
	}
	status, data := httpPutWithAuth(t, serverURL()+"/api/v1/orders/550e8400-e29b-41d4-a716-446655449999/pay", body, token)
	if status != 404 {
		t.Fatalf("expected status 404 for unknown order payment, got %d; body: %v", status, data)
	}
}

// TestAdminEndpointsRequireAdmin verifies that dashboard endpoints reject
// regular users.
func TestAdminEndpointsRequireAdmin(t *testing.T) {
	skipIfNotRunning(t)

	_, token := registerAndLogin(t)

	status, _ := httpGetWithAuth(t, serverURL()+"/api/v1/admin/summary", token)
	requireStatus(t, status, 403)

	status2, _ := httpGetWithAuth(t, serverURL()+"/api/v1/admin/orders", token)
	requireStatus(t, status2, 403)
}
