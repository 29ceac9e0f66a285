package verify

import "testing"

func TestExtractFromLinesAmountNeedsCurrencyContext(t *testing.T) {
	ex := ExtractFromLines("order 1500\nsession 42")
	if ex.AmountFound {
		t.Fatalf("no currency context, amount must not be found: %+v", ex)
	}

	ex = ExtractFromLines("Amount Paid: 1500.00\nUTR: 123456789012")
	if !ex.AmountFound || ex.Amount != 1500 {
		t.Fatalf("amount = %v, %v; want 1500, true", ex.Amount, ex.AmountFound)
	}
	if ex.UTR != "123456789012" {
		t.Fatalf("utr = %q; want 123456789012", ex.UTR)
	}
}

func TestExtractFromLinesAmountBounds(t *testing.T) {
	// 5 below the floor, 9998877665 a phone-shaped run
	ex := ExtractFromLines("Amount: 5\nPaid to 9998877665")
	if ex.AmountFound {
		t.Fatalf("amount below plausibility floor accepted: %+v", ex)
	}
}

func TestExtractFromLinesPhoneFilter(t *testing.T) {
	ex := ExtractFromLines("call 9998877665\nref 123456789012")
	if len(ex.Candidates) != 2 {
		t.Fatalf("candidates = %v", ex.Candidates)
	}
	if len(ex.Filtered) != 1 || ex.Filtered[0] != "123456789012" {
		t.Fatalf("filtered = %v; want [123456789012]", ex.Filtered)
	}
	if ex.UTR != "123456789012" {
		t.Fatalf("utr = %q", ex.UTR)
	}
}

func TestExtractFromLinesKeywordLineWins(t *testing.T) {
	// the keyword line's reference beats a longer run elsewhere
	ex := ExtractFromLines("trace 111111111111111111\nTransaction ID 222222222222")
	if ex.UTR != "222222222222" {
		t.Fatalf("utr = %q; want 222222222222", ex.UTR)
	}
}

func TestExtractFromLinesEmptyText(t *testing.T) {
	ex := ExtractFromLines("")
	if ex.AmountFound || ex.UTR != "" {
		t.Fatalf("unexpected extraction from empty text: %+v", ex)
	}
	if ex.Candidates == nil || ex.Filtered == nil {
		t.Fatal("candidate slices must be non-nil for JSON encoding")
	}
}
