package loyalty

import "testing"

func TestPointsFor(t *testing.T) {
	cases := []struct {
		netSales float64
		want     int64
	}{
		{0, 0},
		{499_999, 0},
		{500_000, 1},
		{1_000_000, 2},
		{1_499_999, 2},
		{123_456_789, 246},
	}
	for _, c := range cases {
		if got := PointsFor(c.netSales); got != c.want {
			t.Fatalf("PointsFor(%v) = %d, want %d", c.netSales, got, c.want)
		}
	}
}

func TestPointsForExactFloor(t *testing.T) {
	for ns := float64(0); ns < 5_000_000; ns += 123_457 {
		got := PointsFor(ns)
		want := int64(ns) / PointsDivisor
		if got != want {
			t.Fatalf("PointsFor(%v) = %d, want %d", ns, got, want)
		}
	}
}

func TestTierFor(t *testing.T) {
	cases := []struct {
		netSales float64
		want     string
	}{
		{0, TierSilver},
		{249_999_999, TierSilver},
		{250_000_000, TierGold},
		{749_999_999, TierGold},
		{750_000_000, TierDiamond},
		{2_000_000_000, TierDiamond},
	}
	for _, c := range cases {
		if got := TierFor(c.netSales); got != c.want {
			t.Fatalf("TierFor(%v) = %s, want %s", c.netSales, got, c.want)
		}
	}
}

func TestTierNeverRegresses(t *testing.T) {
	rank := map[string]int{TierSilver: 0, TierGold: 1, TierDiamond: 2}
	prev := TierFor(0)
	for ns := float64(0); ns <= 1_000_000_000; ns += 7_654_321 {
		cur := TierFor(ns)
		if rank[cur] < rank[prev] {
			t.Fatalf("tier regressed from %s to %s at net sales %v", prev, cur, ns)
		}
		prev = cur
	}
}

func TestNextTier(t *testing.T) {
	next, needed := NextTier(100_000_000)
	if next != TierGold || needed != 150_000_000 {
		t.Fatalf("expected Gold in 150000000, got %s in %v", next, needed)
	}
	next, needed = NextTier(750_000_000)
	if next != "" || needed != 0 {
		t.Fatalf("expected no next tier at the top, got %s in %v", next, needed)
	}
}
