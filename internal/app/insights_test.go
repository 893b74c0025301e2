package app

import "testing"

func TestSelectInsightsThreshold(t *testing.T) {
	tests := []struct {
		percent      float64
		wantPositive bool
	}{
		{0, false},
		{12, false},
		{19.99, false},
		{20, true},
		{50, true},
		{91, true},
		{100, true},
	}
	for _, tt := range tests {
		got := SelectInsights(tt.percent)
		if len(got) == 0 {
			t.Fatalf("SelectInsights(%v) returned empty list", tt.percent)
		}
		isPositive := got[0] == positiveInsights[0]
		if isPositive != tt.wantPositive {
			t.Errorf("SelectInsights(%v): positive=%v, want %v", tt.percent, isPositive, tt.wantPositive)
		}
	}
}

func TestInsightListsAreComplete(t *testing.T) {
	if len(positiveInsights) != 5 {
		t.Errorf("positive list has %d entries, want 5", len(positiveInsights))
	}
	if len(negativeInsights) != 5 {
		t.Errorf("negative list has %d entries, want 5", len(negativeInsights))
	}
	for _, list := range [][]string{positiveInsights, negativeInsights} {
		for i, item := range list {
			if item == "" {
				t.Errorf("empty insight at index %d", i)
			}
		}
	}
}
