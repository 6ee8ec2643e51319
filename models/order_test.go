package models

import "testing"

func TestCompletionPercent(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		target    int
		expected  int
	}{
		{"zero target", 10, 0, 0},
		{"negative target", 10, -5, 0},
		{"zero completed", 0, 100, 0},
		{"partial", 65, 100, 65},
		{"rounds up", 2, 3, 67},
		{"rounds down", 1, 3, 33},
		{"complete", 100, 100, 100},
		{"overshoot clamps to 100", 150, 100, 100},
		{"negative completed clamps to 0", -5, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompletionPercent(tt.completed, tt.target); got != tt.expected {
				t.Errorf("CompletionPercent(%d, %d) = %d, expected %d",
					tt.completed, tt.target, got, tt.expected)
			}
		})
	}
}

func TestRollupCompletion(t *testing.T) {
	// Worked example: order target 100, single product 40/100 done,
	// after reporting 25 more the rollup must read 65 pcs / 65%.
	products := []OrderProduct{{Quantity: 100, CompletedQty: 65}}
	s := RollupCompletion(100, products)

	if s.CompletedPcs != 65 {
		t.Errorf("CompletedPcs = %d, expected 65", s.CompletedPcs)
	}
	if s.Percent != 65 {
		t.Errorf("Percent = %d, expected 65", s.Percent)
	}
	if s.CompletedProducts != 0 {
		t.Errorf("CompletedProducts = %d, expected 0 (65 < 100)", s.CompletedProducts)
	}
	if s.TotalProducts != 1 {
		t.Errorf("TotalProducts = %d, expected 1", s.TotalProducts)
	}
}

func TestRollupCompletionMultiProduct(t *testing.T) {
	products := []OrderProduct{
		{Quantity: 50, CompletedQty: 50},
		{Quantity: 30, CompletedQty: 10},
		{Quantity: 20, CompletedQty: 0},
	}
	s := RollupCompletion(100, products)

	if s.CompletedPcs != 60 {
		t.Errorf("CompletedPcs = %d, expected 60", s.CompletedPcs)
	}
	if s.CompletedProducts != 1 {
		t.Errorf("CompletedProducts = %d, expected 1", s.CompletedProducts)
	}
	if s.Percent != 60 {
		t.Errorf("Percent = %d, expected 60", s.Percent)
	}
}

func TestRollupCompletionZeroOrderTargetFallsBackToLineTargets(t *testing.T) {
	products := []OrderProduct{
		{Quantity: 10, CompletedQty: 10},
		{Quantity: 10, CompletedQty: 10},
	}
	s := RollupCompletion(0, products)
	if s.Percent != 100 {
		t.Errorf("Percent = %d, expected 100 when every line is done", s.Percent)
	}
}

func TestAllProductsComplete(t *testing.T) {
	tests := []struct {
		name     string
		products []OrderProduct
		expected bool
	}{
		{"no products", nil, false},
		{"one incomplete", []OrderProduct{{Quantity: 10, CompletedQty: 5}}, false},
		{"exactly at target", []OrderProduct{{Quantity: 10, CompletedQty: 10}}, true},
		{"over target", []OrderProduct{{Quantity: 10, CompletedQty: 12}}, true},
		{
			"mixed",
			[]OrderProduct{
				{Quantity: 10, CompletedQty: 10},
				{Quantity: 5, CompletedQty: 4},
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllProductsComplete(tt.products); got != tt.expected {
				t.Errorf("AllProductsComplete() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestOrderProductRemaining(t *testing.T) {
	op := OrderProduct{Quantity: 100, CompletedQty: 40}
	if got := op.Remaining(); got != 60 {
		t.Errorf("Remaining() = %d, expected 60", got)
	}

	over := OrderProduct{Quantity: 10, CompletedQty: 15}
	if got := over.Remaining(); got != 0 {
		t.Errorf("Remaining() with overshoot = %d, expected 0", got)
	}
}

func TestOrderLinkIsExpired(t *testing.T) {
	link := OrderLink{}
	if link.IsExpired() {
		t.Error("link without expiry must never expire")
	}
}

func TestIsValidOrderStatus(t *testing.T) {
	for _, s := range []string{OrderDraft, OrderConfirmed, OrderProcessing, OrderCompleted, OrderCancelled} {
		if !IsValidOrderStatus(s) {
			t.Errorf("IsValidOrderStatus(%q) = false, expected true", s)
		}
	}
	if IsValidOrderStatus("shipped") {
		t.Error(`IsValidOrderStatus("shipped") = true, expected false`)
	}
}
