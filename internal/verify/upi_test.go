package verify

import (
	"strings"
	"testing"
)

func TestNormalizeZeroMisreads(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"1O0", "100"},
		{"5o0", "500"},
		{"2Q?", "200"},
		{"₹ 1500", "1500"},
		{"$1500", "1500"},
	}

	for _, tc := range cases {
		if got := Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	text := "Amount Paid ₹1,5OO.00 UTR 1234567890o2"
	once := Normalize(text)
	twice := Normalize(once)
	if once != twice {
		t.Fatalf("normalization not idempotent: %q vs %q", once, twice)
	}

	a1, ok1 := ExtractAmount(once)
	a2, ok2 := ExtractAmount(twice)
	if ok1 != ok2 || a1 != a2 {
		t.Fatalf("amount extraction differs after re-normalization: %v/%v vs %v/%v", a1, ok1, a2, ok2)
	}
}

func TestExtractAmount(t *testing.T) {
	cases := []struct {
		text  string
		want  float64
		found bool
	}{
		{"Rs 1500 paid", 1500, true},
		{"INR 2,500.00 transferred", 2500, true},
		{"paid 750 today", 750, true},
		{"no numbers here", 0, false},
	}

	for _, tc := range cases {
		got, found := ExtractAmount(Normalize(tc.text))
		if found != tc.found || got != tc.want {
			t.Fatalf("ExtractAmount(%q) = %v, %v; want %v, %v", tc.text, got, found, tc.want, tc.found)
		}
	}
}

func TestExtractUTRClaimedMatchWins(t *testing.T) {
	text := "ref 99999999999999 then 123456789012"
	utr, ok := ExtractUTR(text, "123456789012")
	if !ok || utr != "123456789012" {
		t.Fatalf("claimed reference should win: got %q, %v", utr, ok)
	}
}

func TestExtractUTRKeywordMarker(t *testing.T) {
	text := "1111111111111111 UPI Ref 2222222222"
	utr, ok := ExtractUTR(text, "")
	if !ok || utr != "2222222222" {
		t.Fatalf("expected first candidate after UPI marker, got %q, %v", utr, ok)
	}

	// a marker with no candidate after it selects nothing
	text = "1111111111111111 then UPI at the end"
	if _, ok := ExtractUTR(text, ""); ok {
		t.Fatal("marker with no trailing candidate must not select")
	}
}

func TestExtractUTRLongestStableTieBreak(t *testing.T) {
	// three equal-length candidates, no claimed match, no marker:
	// first-seen order decides
	text := "1234567890123 9876543210987 5554443332221"
	utr, ok := ExtractUTR(text, "")
	if !ok || utr != "1234567890123" {
		t.Fatalf("tie-break should pick first-seen candidate, got %q", utr)
	}
}

func TestVerifyCleanAccept(t *testing.T) {
	// scenario: exact amount and UTR both present in the screenshot
	res := Verify("Amount Paid ₹1500 UTR 123456789012", "123456789012", 1500)
	if !res.Valid {
		t.Fatalf("expected clean accept, got %+v", res)
	}
	if res.Amount != 1500 {
		t.Fatalf("amount = %v; want 1500", res.Amount)
	}
	if res.UTR != "123456789012" {
		t.Fatalf("utr = %q; want 123456789012", res.UTR)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestVerifyRejectsWhenNoReference(t *testing.T) {
	// no 10+ digit run anywhere: hard rejection regardless of the amount
	res := Verify("Amount Paid ₹1500, thank you", "123456789012", 1500)
	if res.Valid {
		t.Fatalf("expected rejection, got %+v", res)
	}
	if res.Reason != ReasonUTRNotFound {
		t.Fatalf("reason = %q; want %q", res.Reason, ReasonUTRNotFound)
	}
}

func TestVerifyRejectsWhenNoAmount(t *testing.T) {
	res := Verify("xyz abc", "123456789012", 1500)
	if res.Valid || res.Reason != ReasonAmountNotFound {
		t.Fatalf("expected amount rejection, got %+v", res)
	}
}

func TestVerifyWarningsReportedIndependently(t *testing.T) {
	// amount off by more than 10 AND mismatched UTR: both warnings attach
	res := Verify("Paid 1400 ref 999999999999", "123456789012", 1500)
	if !res.Valid {
		t.Fatalf("discrepancies must not reject: %+v", res)
	}
	if len(res.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", res.Warnings)
	}
	if !strings.Contains(res.Warnings[0], "Amount") || !strings.Contains(res.Warnings[1], "UTR") {
		t.Fatalf("warnings = %v", res.Warnings)
	}
}

func TestVerifyAmountWithinTolerance(t *testing.T) {
	res := Verify("Paid 1495 ref 123456789012", "123456789012", 1500)
	if !res.Valid || len(res.Warnings) != 0 {
		t.Fatalf("difference of 5 is within tolerance: %+v", res)
	}
}
