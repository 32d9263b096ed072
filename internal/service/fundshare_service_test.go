package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/quantora/fund-management-backend/internal/apperrors"
	"github.com/quantora/fund-management-backend/internal/model"
	"github.com/quantora/fund-management-backend/internal/testutil"
)

var navDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// TestFundShareService_Subscribe tests the subscription leg of the ledger.
//
// WHY: A subscription moves money in three places at once (investor units,
// investor capital, fund cash) and journals a trade. All four must agree
// with the worked fee arithmetic, or the ledger drifts.
func TestFundShareService_Subscribe(t *testing.T) {
	t.Run("issues units at the latest price net of fee", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		inv := testutil.NewInvestor().Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		trade, err := svc.Subscribe(context.Background(), inv.ID, 10_000_000)
		if err != nil {
			t.Fatalf("Subscribe() returned unexpected error: %v", err)
		}

		if !approx(trade.Fee, 15_000) {
			t.Errorf("Expected fee 15000, got %v", trade.Fee)
		}
		if !approx(trade.CashFlow, 9_985_000) {
			t.Errorf("Expected cash flow 9985000, got %v", trade.CashFlow)
		}
		expectedUnits := 9_985_000.0 / 1_100.0
		if !approx(trade.Units, expectedUnits) {
			t.Errorf("Expected units %.4f, got %.4f", expectedUnits, trade.Units)
		}
		if trade.Side != model.SideBuy {
			t.Errorf("Expected Buy trade, got %s", trade.Side)
		}

		var units, capital float64
		if err := db.QueryRow(`SELECT units, capital FROM investor WHERE id = ?`, inv.ID).Scan(&units, &capital); err != nil {
			t.Fatalf("Failed to read investor balances: %v", err)
		}
		if !approx(units, expectedUnits) {
			t.Errorf("Expected investor units %.4f, got %.4f", expectedUnits, units)
		}
		if !approx(capital, 9_985_000) {
			t.Errorf("Expected investor capital 9985000, got %v", capital)
		}

		var cash float64
		if err := db.QueryRow(`SELECT net_value FROM position WHERE ticker = 'YTM'`).Scan(&cash); err != nil {
			t.Fatalf("Failed to read cash balance: %v", err)
		}
		if !approx(cash, 1_000_000+9_985_000) {
			t.Errorf("Expected fund cash 10985000, got %v", cash)
		}
	})

	t.Run("rejected without a completed valuation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		inv := testutil.NewInvestor().Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).Incomplete().Build(t, db)

		_, err := svc.Subscribe(context.Background(), inv.ID, 10_000)
		if !errors.Is(err, apperrors.ErrNoValuation) {
			t.Errorf("Expected ErrNoValuation, got %v", err)
		}
	})

	t.Run("rejected for unknown investor", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).Build(t, db)

		_, err := svc.Subscribe(context.Background(), testutil.MakeID(), 10_000)
		if !errors.Is(err, apperrors.ErrInvestorNotFound) {
			t.Errorf("Expected ErrInvestorNotFound, got %v", err)
		}
	})

	t.Run("rejected for non-positive amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		_, err := svc.Subscribe(context.Background(), testutil.MakeID(), 0)
		if !errors.Is(err, apperrors.ErrInvalidAmount) {
			t.Errorf("Expected ErrInvalidAmount, got %v", err)
		}
	})
}

// TestFundShareService_Redeem tests the redemption leg of the ledger.
//
// WHY: Redemption pays real money out of fund cash. Unit cover and cash
// cover must both be checked inside the locked scope, and a failed check
// must leave every balance untouched.
func TestFundShareService_Redeem(t *testing.T) {
	t.Run("pays out at the latest price net of fee", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		inv := testutil.NewInvestor().WithUnits(1_000).WithCapital(1_000_000).Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		trade, err := svc.Redeem(context.Background(), inv.ID, 500)
		if err != nil {
			t.Fatalf("Redeem() returned unexpected error: %v", err)
		}

		// 500 * 1100 = 550000 gross, fee 825, net 549175.
		if !approx(trade.Fee, 825) {
			t.Errorf("Expected fee 825, got %v", trade.Fee)
		}
		if !approx(trade.CashFlow, -549_175) {
			t.Errorf("Expected cash flow -549175, got %v", trade.CashFlow)
		}
		if trade.Side != model.SideSell {
			t.Errorf("Expected Sell trade, got %s", trade.Side)
		}

		var units float64
		if err := db.QueryRow(`SELECT units FROM investor WHERE id = ?`, inv.ID).Scan(&units); err != nil {
			t.Fatalf("Failed to read investor units: %v", err)
		}
		if !approx(units, 500) {
			t.Errorf("Expected 500 units left, got %v", units)
		}

		var cash float64
		if err := db.QueryRow(`SELECT net_value FROM position WHERE ticker = 'YTM'`).Scan(&cash); err != nil {
			t.Fatalf("Failed to read cash balance: %v", err)
		}
		if !approx(cash, 1_000_000-549_175) {
			t.Errorf("Expected fund cash %v, got %v", 1_000_000-549_175, cash)
		}
	})

	t.Run("rejected when units are short, no state change", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		inv := testutil.NewInvestor().WithUnits(100).WithCapital(100_000).Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 10_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		_, err := svc.Redeem(context.Background(), inv.ID, 500)
		if !errors.Is(err, apperrors.ErrInsufficientUnits) {
			t.Fatalf("Expected ErrInsufficientUnits, got %v", err)
		}

		var units float64
		if err := db.QueryRow(`SELECT units FROM investor WHERE id = ?`, inv.ID).Scan(&units); err != nil {
			t.Fatalf("Failed to read investor units: %v", err)
		}
		if units != 100 {
			t.Errorf("Expected units unchanged at 100, got %v", units)
		}
	})

	t.Run("rejected when fund cash is short, no state change", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		inv := testutil.NewInvestor().WithUnits(1_000).WithCapital(1_000_000).Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 100_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		_, err := svc.Redeem(context.Background(), inv.ID, 500)
		if !errors.Is(err, apperrors.ErrInsufficientFundCash) {
			t.Fatalf("Expected ErrInsufficientFundCash, got %v", err)
		}

		var cash float64
		if err := db.QueryRow(`SELECT net_value FROM position WHERE ticker = 'YTM'`).Scan(&cash); err != nil {
			t.Fatalf("Failed to read cash balance: %v", err)
		}
		if cash != 100_000 {
			t.Errorf("Expected cash unchanged at 100000, got %v", cash)
		}

		var tradeCount int
		if err := db.QueryRow(`SELECT COUNT(*) FROM fundshare_trade`).Scan(&tradeCount); err != nil {
			t.Fatalf("Failed to count trades: %v", err)
		}
		if tradeCount != 0 {
			t.Errorf("Expected no journaled trades, got %d", tradeCount)
		}
	})
}

// TestFundShareService_Requests tests the file/approve/reject workflow.
//
// WHY: Requests are the investor-facing path into the ledger. Approval must
// settle exactly once; a second decision on the same request must fail.
func TestFundShareService_Requests(t *testing.T) {
	t.Run("file and approve a subscription request", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		inv := testutil.NewInvestor().Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		req, err := svc.FileRequest(context.Background(), inv.ID, model.SideBuy, 10_000_000, 0)
		if err != nil {
			t.Fatalf("FileRequest() returned unexpected error: %v", err)
		}
		if req.Status != model.RequestStatusPending {
			t.Errorf("Expected PENDING, got %s", req.Status)
		}
		if !approx(req.Fee, 15_000) {
			t.Errorf("Expected quoted fee 15000, got %v", req.Fee)
		}

		pending, err := svc.GetPendingRequests(context.Background())
		if err != nil {
			t.Fatalf("GetPendingRequests() returned unexpected error: %v", err)
		}
		if len(pending) != 1 {
			t.Fatalf("Expected 1 pending request, got %d", len(pending))
		}

		trade, err := svc.ApproveRequest(context.Background(), req.ID)
		if err != nil {
			t.Fatalf("ApproveRequest() returned unexpected error: %v", err)
		}
		if !approx(trade.Units, 9_985_000.0/1_100.0) {
			t.Errorf("Expected units %.4f, got %.4f", 9_985_000.0/1_100.0, trade.Units)
		}

		var status string
		if err := db.QueryRow(`SELECT status FROM fundshare_request WHERE id = ?`, req.ID).Scan(&status); err != nil {
			t.Fatalf("Failed to read request status: %v", err)
		}
		if status != model.RequestStatusSuccess {
			t.Errorf("Expected SUCCESS, got %s", status)
		}
	})

	t.Run("approve twice fails", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		inv := testutil.NewInvestor().Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		req, err := svc.FileRequest(context.Background(), inv.ID, model.SideBuy, 10_000, 0)
		if err != nil {
			t.Fatalf("FileRequest() returned unexpected error: %v", err)
		}

		if _, err := svc.ApproveRequest(context.Background(), req.ID); err != nil {
			t.Fatalf("First approval returned unexpected error: %v", err)
		}

		_, err = svc.ApproveRequest(context.Background(), req.ID)
		if !errors.Is(err, apperrors.ErrRequestAlreadyProcessed) {
			t.Errorf("Expected ErrRequestAlreadyProcessed, got %v", err)
		}
	})

	t.Run("reject leaves balances untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		inv := testutil.NewInvestor().Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 1_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		req, err := svc.FileRequest(context.Background(), inv.ID, model.SideBuy, 10_000_000, 0)
		if err != nil {
			t.Fatalf("FileRequest() returned unexpected error: %v", err)
		}

		if err := svc.RejectRequest(context.Background(), req.ID); err != nil {
			t.Fatalf("RejectRequest() returned unexpected error: %v", err)
		}

		var units float64
		if err := db.QueryRow(`SELECT units FROM investor WHERE id = ?`, inv.ID).Scan(&units); err != nil {
			t.Fatalf("Failed to read investor units: %v", err)
		}
		if units != 0 {
			t.Errorf("Expected no units issued after rejection, got %v", units)
		}

		// A rejected request cannot be approved afterwards.
		_, err = svc.ApproveRequest(context.Background(), req.ID)
		if !errors.Is(err, apperrors.ErrRequestAlreadyProcessed) {
			t.Errorf("Expected ErrRequestAlreadyProcessed, got %v", err)
		}
	})

	t.Run("redeem request requires units", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		inv := testutil.NewInvestor().Build(t, db)
		testutil.NewValuation(navDate).WithNavPerUnit(1_100).Build(t, db)

		_, err := svc.FileRequest(context.Background(), inv.ID, model.SideSell, 0, 0)
		if !errors.Is(err, apperrors.ErrInvalidUnits) {
			t.Errorf("Expected ErrInvalidUnits, got %v", err)
		}
	})
}

// TestFundShareService_ConcurrentRedemptions tests the locked scope under
// real contention.
//
// WHY: The balance checks only hold if the read-compute-write is serialized
// per investor and per cash line. Without the locks, concurrent redemptions
// could each read the same balance and jointly pay out more than the cover.
func TestFundShareService_ConcurrentRedemptions(t *testing.T) {
	t.Run("never double-spend one investor's units", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		inv := testutil.NewInvestor().WithUnits(1_000).WithCapital(1_000_000).Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 10_000_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_000).Build(t, db)

		// 8 racers, 300 units each: only 3 can fit into 1000 units.
		const racers = 8
		errs := make([]error, racers)

		var wg sync.WaitGroup
		for i := 0; i < racers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = svc.Redeem(context.Background(), inv.ID, 300)
			}(i)
		}
		wg.Wait()

		successes := 0
		for _, err := range errs {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperrors.ErrInsufficientUnits):
			default:
				t.Fatalf("Unexpected error from concurrent Redeem(): %v", err)
			}
		}
		if successes != 3 {
			t.Fatalf("Expected exactly 3 redemptions to fit, got %d", successes)
		}

		var units float64
		if err := db.QueryRow(`SELECT units FROM investor WHERE id = ?`, inv.ID).Scan(&units); err != nil {
			t.Fatalf("Failed to read investor units: %v", err)
		}
		if !approx(units, 100) {
			t.Errorf("Expected 100 units left, got %v", units)
		}

		// Each payout: 300 * 1000 gross, fee 450, net 299550.
		var cash float64
		if err := db.QueryRow(`SELECT net_value FROM position WHERE ticker = 'YTM'`).Scan(&cash); err != nil {
			t.Fatalf("Failed to read cash balance: %v", err)
		}
		if !approx(cash, 10_000_000-3*299_550) {
			t.Errorf("Expected cash %v, got %v", 10_000_000-3*299_550, cash)
		}

		var tradeCount int
		if err := db.QueryRow(`SELECT COUNT(*) FROM fundshare_trade`).Scan(&tradeCount); err != nil {
			t.Fatalf("Failed to count trades: %v", err)
		}
		if tradeCount != successes {
			t.Errorf("Expected %d journal rows, got %d", successes, tradeCount)
		}
	})

	t.Run("never overdraw the shared cash line", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestFundShareService(t, db)

		invA := testutil.NewInvestor().WithName("A").WithUnits(1_000).WithCapital(1_000_000).Build(t, db)
		invB := testutil.NewInvestor().WithName("B").WithUnits(1_000).WithCapital(1_000_000).Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 700_000)
		testutil.NewValuation(navDate).WithNavPerUnit(1_000).Build(t, db)

		// Each redemption pays 599100 net; the 700000 cash covers only one.
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, id := range []string{invA.ID, invB.ID} {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				_, errs[i] = svc.Redeem(context.Background(), id, 600)
			}(i, id)
		}
		wg.Wait()

		successes := 0
		for _, err := range errs {
			switch {
			case err == nil:
				successes++
			case errors.Is(err, apperrors.ErrInsufficientFundCash):
			default:
				t.Fatalf("Unexpected error from concurrent Redeem(): %v", err)
			}
		}
		if successes != 1 {
			t.Fatalf("Expected exactly 1 redemption to fit the cash cover, got %d", successes)
		}

		var cash float64
		if err := db.QueryRow(`SELECT net_value FROM position WHERE ticker = 'YTM'`).Scan(&cash); err != nil {
			t.Fatalf("Failed to read cash balance: %v", err)
		}
		if cash < 0 {
			t.Fatalf("Cash line overdrawn: %v", cash)
		}
		if !approx(cash, 700_000-599_100) {
			t.Errorf("Expected cash %v, got %v", 700_000-599_100, cash)
		}
	})
}

// TestFundShareService_UnitConservation checks that the sum of investor
// units always equals issued minus retired units in the journal.
func TestFundShareService_UnitConservation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestFundShareService(t, db)

	invA := testutil.NewInvestor().WithName("A").Build(t, db)
	invB := testutil.NewInvestor().WithName("B").Build(t, db)
	testutil.CreateCashPosition(t, db, "YTM", 10_000_000)
	testutil.NewValuation(navDate).WithNavPerUnit(1_000).Build(t, db)

	ctx := context.Background()
	if _, err := svc.Subscribe(ctx, invA.ID, 1_000_000); err != nil {
		t.Fatalf("Subscribe() returned unexpected error: %v", err)
	}
	if _, err := svc.Subscribe(ctx, invB.ID, 2_000_000); err != nil {
		t.Fatalf("Subscribe() returned unexpected error: %v", err)
	}
	if _, err := svc.Redeem(ctx, invA.ID, 300); err != nil {
		t.Fatalf("Redeem() returned unexpected error: %v", err)
	}

	var investorUnits float64
	if err := db.QueryRow(`SELECT COALESCE(SUM(units), 0) FROM investor`).Scan(&investorUnits); err != nil {
		t.Fatalf("Failed to sum investor units: %v", err)
	}

	var journalUnits float64
	query := `
		SELECT COALESCE(SUM(CASE WHEN side = 'Buy' THEN units ELSE -units END), 0)
		FROM fundshare_trade
	`
	if err := db.QueryRow(query).Scan(&journalUnits); err != nil {
		t.Fatalf("Failed to sum journal units: %v", err)
	}

	if !approx(investorUnits, journalUnits) {
		t.Errorf("Unit conservation violated: investors hold %.6f, journal says %.6f", investorUnits, journalUnits)
	}
}
