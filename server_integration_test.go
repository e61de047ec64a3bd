package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("test-secret")
	initDB()
	r := gin.Default()
	setupRoutes(r)
	return r
}

func mustID(t *testing.T, rec *httptest.ResponseRecorder, step string) uint {
	t.Helper()
	if rec.Code != 200 {
		t.Fatalf("%s failed status=%d body=%s", step, rec.Code, rec.Body.String())
	}
	var resp struct {
		ID uint `json:"id"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.ID == 0 {
		t.Fatalf("%s returned no id: %s", step, rec.Body.String())
	}
	return resp.ID
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)
	suffix := time.Now().UnixNano()

	// 1. Register + login
	regBody, _ := json.Marshal(map[string]string{"username": fmt.Sprintf("agent%d", suffix), "password": "pass123"})
	resp := performRequest(r, http.MethodPost, "/register", bytes.NewBuffer(regBody), "")
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/login", bytes.NewBuffer(regBody), "")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}

	// 2. Create membre
	membreBody, _ := json.Marshal(map[string]string{"nom": "Diallo", "prenom": "Awa"})
	membreID := mustID(t, performRequest(r, http.MethodPost, "/membres", bytes.NewBuffer(membreBody), token), "create membre")

	// 3. Create produit + replenish stock (ENTREE)
	prodBody, _ := json.Marshal(map[string]any{"nom": fmt.Sprintf("Riz-%d", suffix), "prix_unitaire": 1000})
	prodID := mustID(t, performRequest(r, http.MethodPost, "/produits", bytes.NewBuffer(prodBody), token), "create produit")
	mvBody, _ := json.Marshal(map[string]any{"produit_id": prodID, "type": "ENTREE", "quantite": 10, "prix_unitaire": 500})
	mustID(t, performRequest(r, http.MethodPost, "/stock/mouvements", bytes.NewBuffer(mvBody), token), "stock entree")

	// 4. Cotisation lifecycle: create then pay
	cotBody, _ := json.Marshal(map[string]any{"membre_id": membreID, "periode": fmt.Sprintf("2026-%02d", suffix%12+1), "montant": 25000})
	cotID := mustID(t, performRequest(r, http.MethodPost, "/cotisations", bytes.NewBuffer(cotBody), token), "create cotisation")
	resp = performRequest(r, http.MethodPut, fmt.Sprintf("/cotisations/%d/payer", cotID), bytes.NewBuffer([]byte(`{}`)), token)
	if resp.Code != 200 {
		t.Fatalf("payer cotisation failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 5. Credit + disbursement + vente drawing on it
	credBody, _ := json.Marshal(map[string]any{"membre_id": membreID, "plafond": 50000})
	credID := mustID(t, performRequest(r, http.MethodPost, "/credits", bytes.NewBuffer(credBody), token), "create credit")
	txBody, _ := json.Marshal(map[string]any{"type": "DECAISSEMENT", "montant": 20000})
	mustID(t, performRequest(r, http.MethodPost, fmt.Sprintf("/credits/%d/transactions", credID), bytes.NewBuffer(txBody), token), "decaissement")
	venteBody, _ := json.Marshal(map[string]any{"produit_id": prodID, "credit_id": credID, "quantite": 3})
	mustID(t, performRequest(r, http.MethodPost, "/ventes", bytes.NewBuffer(venteBody), token), "create vente")

	// 6. Journal shows the events with a coherent envelope
	resp = performRequest(r, http.MethodGet, "/journal", nil, token)
	if resp.Code != 200 {
		t.Fatalf("journal failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var jr struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
		Totaux  map[string]any   `json:"totaux"`
		Meta    map[string]any   `json:"meta"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &jr)
	if !jr.Success || len(jr.Data) == 0 {
		t.Fatalf("journal empty or failed: %s", resp.Body.String())
	}

	// 7. Unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, "/membres", nil, "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list membres got %d", unauth.Code)
	}

	// 8. Agent cannot delete (admin only)
	del := performRequest(r, http.MethodDelete, fmt.Sprintf("/membres/%d", membreID), nil, token)
	if del.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for agent delete got %d", del.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}
