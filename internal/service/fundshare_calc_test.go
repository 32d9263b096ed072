package service

import "testing"

// TestSubscribeQuote tests the subscription pricing formula.
//
// WHY: The fee split decides how much capital the investor actually
// contributes and how many units are issued; both feed the ledger directly.
func TestSubscribeQuote(t *testing.T) {
	t.Run("standard subscription", func(t *testing.T) {
		fee, net, units := subscribeQuote(10_000_000, 0.0015, 1_100)

		if !almostEqual(fee, 15_000) {
			t.Errorf("Expected fee 15000, got %v", fee)
		}
		if !almostEqual(net, 9_985_000) {
			t.Errorf("Expected net 9985000, got %v", net)
		}
		if !almostEqual(units, 9_985_000.0/1_100.0) {
			t.Errorf("Expected units %.6f, got %.6f", 9_985_000.0/1_100.0, units)
		}
	})

	t.Run("zero fee rate passes the full amount through", func(t *testing.T) {
		fee, net, units := subscribeQuote(1_000, 0, 100)

		if fee != 0 {
			t.Errorf("Expected zero fee, got %v", fee)
		}
		if net != 1_000 {
			t.Errorf("Expected net 1000, got %v", net)
		}
		if units != 10 {
			t.Errorf("Expected 10 units, got %v", units)
		}
	})
}

// TestRedeemQuote tests the redemption pricing formula.
func TestRedeemQuote(t *testing.T) {
	gross, fee, net := redeemQuote(500, 0.0015, 1_100)

	if !almostEqual(gross, 550_000) {
		t.Errorf("Expected gross 550000, got %v", gross)
	}
	if !almostEqual(fee, 825) {
		t.Errorf("Expected fee 825, got %v", fee)
	}
	if !almostEqual(net, 549_175) {
		t.Errorf("Expected net 549175, got %v", net)
	}
}

// TestSubscribeRedeemConservation checks that a round trip at the same price
// only loses the two fees.
func TestSubscribeRedeemConservation(t *testing.T) {
	const rate = 0.0015
	const price = 1_100.0

	subFee, _, units := subscribeQuote(10_000_000, rate, price)
	gross, redFee, net := redeemQuote(units, rate, price)

	lost := 10_000_000 - net
	if !almostEqual(lost, subFee+redFee) {
		t.Errorf("Expected round trip to lose exactly the fees (%.4f), lost %.4f", subFee+redFee, lost)
	}
	if gross > 10_000_000 {
		t.Errorf("Redemption gross %.4f exceeds original amount", gross)
	}
}
