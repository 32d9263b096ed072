package service_test

import (
	"context"
	"testing"

	"github.com/quantora/fund-management-backend/internal/model"
	"github.com/quantora/fund-management-backend/internal/testutil"
)

// TestSnapshotService_Rebuild tests the replace-all rollup refresh.
//
// WHY: The rollup is rebuilt from scratch on every run. A second run must
// replace the stored rows, not pile new rows on top of stale ones.
func TestSnapshotService_Rebuild(t *testing.T) {
	t.Run("persists the rollup with Total row first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSnapshotService(t, db)

		testutil.NewPosition("VNM").WithQuantity(100).WithAvgCost(10).WithMarketPrice(12).Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 5_000)

		if _, err := svc.Rebuild(context.Background()); err != nil {
			t.Fatalf("Rebuild() returned unexpected error: %v", err)
		}

		stored, err := svc.GetSnapshots(context.Background())
		if err != nil {
			t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
		}

		if len(stored) != 3 {
			t.Fatalf("Expected 3 rows (Total, Stock, Cash), got %d", len(stored))
		}
		if stored[0].Category != model.SnapshotCategoryTotal {
			t.Errorf("Expected Total row first, got %s", stored[0].Category)
		}
		if !approx(stored[0].MarketValue, 100*12+5_000) {
			t.Errorf("Expected total market value 6200, got %v", stored[0].MarketValue)
		}
	})

	t.Run("second rebuild replaces rather than appends", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSnapshotService(t, db)

		testutil.NewPosition("VNM").WithQuantity(100).WithAvgCost(10).WithMarketPrice(12).Build(t, db)
		testutil.CreateCashPosition(t, db, "YTM", 5_000)

		for i := 0; i < 3; i++ {
			if _, err := svc.Rebuild(context.Background()); err != nil {
				t.Fatalf("Rebuild() run %d returned unexpected error: %v", i, err)
			}
		}

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM snapshot`).Scan(&count); err != nil {
			t.Fatalf("Failed to count snapshot rows: %v", err)
		}
		if count != 3 {
			t.Errorf("Expected row count stable at 3 after reruns, got %d", count)
		}
	})

	t.Run("rebuild tracks position changes", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSnapshotService(t, db)

		testutil.CreateCashPosition(t, db, "YTM", 5_000)
		if _, err := svc.Rebuild(context.Background()); err != nil {
			t.Fatalf("Rebuild() returned unexpected error: %v", err)
		}

		// A stock position appears; the next rebuild must pick it up.
		testutil.NewPosition("FPT").WithQuantity(10).WithAvgCost(100).WithMarketPrice(110).Build(t, db)
		if _, err := svc.Rebuild(context.Background()); err != nil {
			t.Fatalf("Rebuild() returned unexpected error: %v", err)
		}

		stored, err := svc.GetSnapshots(context.Background())
		if err != nil {
			t.Fatalf("GetSnapshots() returned unexpected error: %v", err)
		}

		found := false
		for _, s := range stored {
			if s.Category == model.AssetTypeStock {
				found = true
				if !approx(s.MarketValue, 1_100) {
					t.Errorf("Expected stock market value 1100, got %v", s.MarketValue)
				}
			}
		}
		if !found {
			t.Error("Expected a Stock row after the position was added")
		}
	})
}
