package verify

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Sanity bounds for the diagnostic amount scan; values outside this range
// are usually timestamps, phone fragments or pixel noise.
const (
	minPlausibleAmount = 10
	maxPlausibleAmount = 100000
)

var (
	currencyLineRe = regexp.MustCompile(`(?i)₹|INR|Amount|Paid`)
	lineAmountRe   = regexp.MustCompile(`(\d{2,6}(?:,\d{3})*(?:\.\d{2})?)`)
	utrKeywordRe   = regexp.MustCompile(`(?i)UTR|Transaction ID`)
	lineUTRRe      = regexp.MustCompile(`\d{10,18}`)
	phoneNumberRe  = regexp.MustCompile(`^\d{10}$`)
)

// Extraction is the diagnostic extraction payload, including the raw and
// filtered candidate sets for debugging.
type Extraction struct {
	Amount      float64  `json:"amount,omitempty"`
	AmountFound bool     `json:"-"`
	UTR         string   `json:"utr,omitempty"`
	Candidates  []string `json:"candidate_utrs"`
	Filtered    []string `json:"filtered_utrs"`
}

// ExtractFromLines is the secondary, line-scanning extraction path used by
// the diagnostic endpoint. It looks for currency/keyword context line by
// line before falling back to the same digit-run strategy as the primary
// heuristic, with the amount sanity-bounded so phone numbers and
// timestamps don't match.
func ExtractFromLines(ocrText string) Extraction {
	lines := strings.Split(ocrText, "\n")
	var ex Extraction

	// amount: only lines that mention a currency symbol or keyword
	for _, line := range lines {
		if !currencyLineRe.MatchString(line) {
			continue
		}
		m := lineAmountRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		if amount >= minPlausibleAmount && amount <= maxPlausibleAmount {
			ex.Amount = amount
			ex.AmountFound = true
			break
		}
	}

	ex.Candidates = utrCandidateRe.FindAllString(ocrText, -1)
	if ex.Candidates == nil {
		ex.Candidates = []string{}
	}

	// exactly-10-digit runs are usually phone numbers
	ex.Filtered = make([]string, 0, len(ex.Candidates))
	for _, c := range ex.Candidates {
		if phoneNumberRe.MatchString(c) {
			continue
		}
		ex.Filtered = append(ex.Filtered, c)
	}

	// prefer a reference on a line carrying the UTR / Transaction ID keyword
	for _, line := range lines {
		if !utrKeywordRe.MatchString(line) {
			continue
		}
		if m := lineUTRRe.FindString(line); m != "" {
			ex.UTR = m
			break
		}
	}

	// fall back to the longest filtered candidate, first-seen on ties
	if ex.UTR == "" && len(ex.Filtered) > 0 {
		sorted := make([]string, len(ex.Filtered))
		copy(sorted, ex.Filtered)
		sort.SliceStable(sorted, func(i, j int) bool {
			return len(sorted[i]) > len(sorted[j])
		})
		ex.UTR = sorted[0]
	}

	return ex
}
