package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/quantora/fund-management-backend/internal/model"
	"github.com/quantora/fund-management-backend/internal/testutil"
)

func TestFundShareHandler_Subscribe(t *testing.T) {
	navDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	setupHandler := func(t *testing.T) (*FundShareHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		fs := testutil.NewTestFundShareService(t, db)
		return NewFundShareHandler(fs), db
	}

	t.Run("subscribes successfully", func(t *testing.T) {
		handler, db := setupHandler(t)

		inv := testutil.NewInvestor().Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		body := `{"investorId": "` + inv.ID + `", "amount": 10000000}`
		req := httptest.NewRequest(http.MethodPost, "/api/fundshare/subscribe", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Subscribe(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var trade model.FundShareTrade
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&trade)

		if trade.Fee != 15_000 {
			t.Errorf("Expected fee 15000, got %v", trade.Fee)
		}
		if trade.InvestorID != inv.ID {
			t.Errorf("Expected investor %s, got %s", inv.ID, trade.InvestorID)
		}
	})

	t.Run("returns 400 on invalid body", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/fundshare/subscribe", strings.NewReader(`{"bogus": true}`))
		w := httptest.NewRecorder()

		handler.Subscribe(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on missing amount", func(t *testing.T) {
		handler, _ := setupHandler(t)

		body := `{"investorId": "` + testutil.MakeID() + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/fundshare/subscribe", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Subscribe(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for unknown investor", func(t *testing.T) {
		handler, db := setupHandler(t)

		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		body := `{"investorId": "` + testutil.MakeID() + `", "amount": 10000}`
		req := httptest.NewRequest(http.MethodPost, "/api/fundshare/subscribe", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Subscribe(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 422 without a completed valuation", func(t *testing.T) {
		handler, db := setupHandler(t)

		inv := testutil.NewInvestor().Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)

		body := `{"investorId": "` + inv.ID + `", "amount": 10000}`
		req := httptest.NewRequest(http.MethodPost, "/api/fundshare/subscribe", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Subscribe(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected 422, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestFundShareHandler_Redeem(t *testing.T) {
	navDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	setupHandler := func(t *testing.T) (*FundShareHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		fs := testutil.NewTestFundShareService(t, db)
		return NewFundShareHandler(fs), db
	}

	t.Run("redeems successfully", func(t *testing.T) {
		handler, db := setupHandler(t)

		inv := testutil.NewInvestor().WithUnits(1_000).WithCapital(1_000_000).Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		body := `{"investorId": "` + inv.ID + `", "units": 500}`
		req := httptest.NewRequest(http.MethodPost, "/api/fundshare/redeem", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Redeem(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var trade model.FundShareTrade
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&trade)

		if trade.Fee != 825 {
			t.Errorf("Expected fee 825, got %v", trade.Fee)
		}
	})

	t.Run("returns 409 when units are insufficient", func(t *testing.T) {
		handler, db := setupHandler(t)

		inv := testutil.NewInvestor().WithUnits(10).WithCapital(10_000).Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		body := `{"investorId": "` + inv.ID + `", "units": 500}`
		req := httptest.NewRequest(http.MethodPost, "/api/fundshare/redeem", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Redeem(w, req)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestFundShareHandler_Requests(t *testing.T) {
	navDate := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	setupHandler := func(t *testing.T) (*FundShareHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		fs := testutil.NewTestFundShareService(t, db)
		return NewFundShareHandler(fs), db
	}

	t.Run("files and approves a request", func(t *testing.T) {
		handler, db := setupHandler(t)

		inv := testutil.NewInvestor().Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		body := `{"investorId": "` + inv.ID + `", "side": "Buy", "amount": 10000}`
		req := httptest.NewRequest(http.MethodPost, "/api/fundshare/request", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateRequest(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		var filed model.FundShareRequest
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&filed)

		if filed.Status != model.RequestStatusPending {
			t.Errorf("Expected PENDING, got %s", filed.Status)
		}

		approveReq := testutil.NewRequestWithURLParams(
			http.MethodPost,
			"/api/fundshare/request/"+filed.ID+"/approve",
			map[string]string{"uuid": filed.ID},
		)
		w = httptest.NewRecorder()

		handler.ApproveRequest(w, approveReq)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		// Approving again is a conflict.
		w = httptest.NewRecorder()
		handler.ApproveRequest(w, approveReq)

		if w.Code != http.StatusConflict {
			t.Errorf("Expected 409 on second approval, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for unknown request", func(t *testing.T) {
		handler, _ := setupHandler(t)

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(
			http.MethodPost,
			"/api/fundshare/request/"+id+"/approve",
			map[string]string{"uuid": id},
		)
		w := httptest.NewRecorder()

		handler.ApproveRequest(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("rejects a request with 204", func(t *testing.T) {
		handler, db := setupHandler(t)

		inv := testutil.NewInvestor().Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		body := `{"investorId": "` + inv.ID + `", "side": "Buy", "amount": 10000}`
		req := httptest.NewRequest(http.MethodPost, "/api/fundshare/request", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler.CreateRequest(w, req)

		var filed model.FundShareRequest
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&filed)

		rejectReq := testutil.NewRequestWithURLParams(
			http.MethodPost,
			"/api/fundshare/request/"+filed.ID+"/reject",
			map[string]string{"uuid": filed.ID},
		)
		w = httptest.NewRecorder()

		handler.RejectRequest(w, rejectReq)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
		}
	})
}
