// Package verify implements the payment-screenshot verification heuristic:
// given noisy OCR text plus the user-claimed amount and UTR, it extracts a
// best-guess amount and transaction reference and cross-checks the claim.
// Discrepancies are surfaced as warnings for the admin reviewer rather than
// rejected outright; only a completely missing amount or reference is a
// hard rejection.
package verify

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// AmountTolerance is the absolute difference (in currency units) between
// the extracted and claimed amount that is still considered a match.
const AmountTolerance = 10

// Rejection reason codes. Clients prompt the user differently depending on
// which field could not be found.
const (
	ReasonAmountNotFound = "Amount not found"
	ReasonUTRNotFound    = "Transaction ID not found"
)

var (
	// OCR frequently misreads zero as O, o, Q or ?
	zeroMisreadRe = regexp.MustCompile(`(?i)[oq?]`)
	rupeeRe       = regexp.MustCompile(`₹\s?`)
	dollarRe      = regexp.MustCompile(`\$`)

	// optional currency prefix, digits with thousands separators, optional
	// two decimal places
	amountRe         = regexp.MustCompile(`(?i)\b(?:inr|rs\.?|usd|\$)?\s?([\d,]+(?:\.\d{2})?)\b`)
	fallbackAmountRe = regexp.MustCompile(`\b\d{3,6}\b`)

	// UPI transaction references are 10-18 digit runs
	utrCandidateRe = regexp.MustCompile(`\b\d{10,18}\b`)
)

// Result is the outcome of verifying a claimed payment against OCR text
type Result struct {
	Valid    bool     `json:"valid"`
	Amount   float64  `json:"amount,omitempty"`
	UTR      string   `json:"utr,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// Normalize fixes common OCR zero misreads and strips currency symbols.
// Normalizing already-normalized text is a no-op.
func Normalize(text string) string {
	cleaned := zeroMisreadRe.ReplaceAllString(text, "0")
	cleaned = rupeeRe.ReplaceAllString(cleaned, "")
	cleaned = dollarRe.ReplaceAllString(cleaned, "")
	return cleaned
}

// ExtractAmount pulls a monetary amount out of normalized OCR text. The
// currency-prefixed pattern wins; failing that, any standalone 3-6 digit
// number is accepted.
func ExtractAmount(text string) (float64, bool) {
	if m := amountRe.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if amount, err := strconv.ParseFloat(raw, 64); err == nil && amount != 0 {
			return amount, true
		}
	}

	if m := fallbackAmountRe.FindString(text); m != "" {
		if amount, err := strconv.ParseFloat(m, 64); err == nil && amount != 0 {
			return amount, true
		}
	}

	return 0, false
}

// ExtractUTR selects a transaction reference from the 10-18 digit runs in
// the text. Selection priority:
//
//  1. the claimed reference, if it appears verbatim among the candidates;
//  2. the first candidate occurring after a "UPI" keyword marker;
//  3. the longest candidate, ties broken by first appearance.
func ExtractUTR(text, claimed string) (string, bool) {
	candidates := utrCandidateRe.FindAllString(text, -1)
	if len(candidates) == 0 {
		return "", false
	}

	if claimed != "" {
		for _, c := range candidates {
			if c == claimed {
				return c, true
			}
		}
	}

	if marker := strings.Index(text, "UPI"); marker >= 0 {
		for _, c := range candidates {
			if strings.Index(text, c) > marker {
				return c, true
			}
		}
		// a marker with no candidate after it selects nothing
		return "", false
	}

	sorted := make([]string, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	return sorted[0], true
}

// Verify runs the full heuristic: normalize, extract, cross-check. A
// missing amount or reference rejects with a field-specific reason; an
// amount off by more than AmountTolerance or a mismatched reference is
// accepted with warnings, both conditions reported independently.
func Verify(ocrText, claimedUTR string, claimedAmount float64) Result {
	cleaned := Normalize(ocrText)

	amount, ok := ExtractAmount(cleaned)
	if !ok {
		return Result{Reason: ReasonAmountNotFound}
	}

	utr, ok := ExtractUTR(cleaned, claimedUTR)
	if !ok {
		return Result{Reason: ReasonUTRNotFound}
	}

	result := Result{Valid: true, Amount: amount, UTR: utr}

	if math.Abs(amount-claimedAmount) > AmountTolerance {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Amount in screenshot (%v) differs from entered amount (%v)", amount, claimedAmount))
	}
	if utr != claimedUTR {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("UTR in screenshot (%s) differs from entered UTR (%s)", utr, claimedUTR))
	}

	return result
}
