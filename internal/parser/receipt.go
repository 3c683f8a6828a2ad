package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmynk/clubsettle/internal/models"
	"github.com/mmynk/clubsettle/internal/money"
)

// ReceiptReviewThreshold is the confidence below which a receipt needs review.
const ReceiptReviewThreshold = 0.85

const (
	minLabeledTotal  money.Money = 100
	minFallbackTotal money.Money = 1000
	maxTotal         money.Money = 10_000_000
	minItemPrice     money.Money = 100
	maxItemPrice     money.Money = 1_000_000
	maxReceiptItems              = 20
)

const amountPattern = `([0-9]{1,3}(?:,[0-9]{3})+|[0-9]+)`

// Label patterns in priority order. The first label with an in-range value wins.
var totalPatterns = compileLabels([]string{
	`합\s*계`, `총\s*액`, `총\s*금\s*액`, `결\s*제\s*금\s*액`, `받\s*을\s*금\s*액`, `청\s*구\s*금\s*액`, `\bTOTAL\b`,
})

var (
	groupedAmountRe = regexp.MustCompile(`\b([0-9]{1,3}(?:,[0-9]{3})+)\b`)

	receiptDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{4})\s*[-./]\s*(\d{1,2})\s*[-./]\s*(\d{1,2})`),
		regexp.MustCompile(`(?:^|[^0-9])(\d{2})[-./](\d{1,2})[-./](\d{1,2})(?:[^0-9]|$)`),
		regexp.MustCompile(`(\d{4})\s*년\s*(\d{1,2})\s*월\s*(\d{1,2})\s*일`),
	}

	storeLabelRe = regexp.MustCompile(`(?:상호|가맹점|매장명|점포명)(?:명)?\s*[:：]?\s*(.+)`)
	digitRunRe   = regexp.MustCompile(`\d{3,}`)
	bracketRe    = regexp.MustCompile(`[\[\](){}<>【】「」『』]`)

	itemQtyRe   = regexp.MustCompile(`^(.+?)\s+(\d{1,3})\s*[xX×*]\s*` + amountPattern + `(?:\s*=\s*` + amountPattern + `)?\s*원?$`)
	itemTotalRe = regexp.MustCompile(`^(.+?)\s+` + amountPattern + `\s*원?$`)
	allDigitsRe = regexp.MustCompile(`^[\d\s,.\-]+$`)
)

// Lines containing any of these words are never a store name or an item.
var receiptStopwords = []string{
	"합계", "총액", "부가세", "거래일", "영수증", "카드", "승인", "사업자", "전화",
	"TEL", "주소", "대표", "금액", "일시", "번호", "TOTAL", "과세", "면세", "잔액",
}

func compileLabels(labels []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(labels))
	for i, l := range labels {
		out[i] = regexp.MustCompile(`(?i)` + l + `\s*[:：]?[^0-9\n]{0,8}?` + amountPattern)
	}
	return out
}

// ParseReceipt reads a receipt from OCR text. baseConfidence is the
// recognizer's own score in [0, 1].
//
// Algorithm:
//   - total: labelled amount in [100, 10M], else the largest comma-grouped
//     number in [1000, 10M]
//   - date, store name, items: first match in the leading lines
//   - confidence: base +0.15 for a total, +0.05 each for store/date/items
func ParseReceipt(text string, baseConfidence float64) *models.ReceiptResult {
	normalized := Normalize(text)
	ls := lines(normalized)

	result := &models.ReceiptResult{
		RawText:     text,
		TotalAmount: extractTotal(normalized),
		Date:        extractReceiptDate(ls),
		StoreName:   extractStoreName(ls),
		Items:       extractItems(ls),
	}

	confidence := baseConfidence
	if result.TotalAmount != nil {
		confidence += 0.15
	}
	if result.StoreName != nil {
		confidence += 0.05
	}
	if result.Date != nil {
		confidence += 0.05
	}
	if len(result.Items) > 0 {
		confidence += 0.05
	}
	result.Confidence = clamp01(confidence)
	result.RequiresManualReview = result.Confidence < ReceiptReviewThreshold || result.TotalAmount == nil
	return result
}

func extractTotal(text string) *money.Money {
	for _, re := range totalPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, ok := money.Parse(m[1]); ok && v >= minLabeledTotal && v <= maxTotal {
				return &v
			}
		}
	}

	var best money.Money
	for _, m := range groupedAmountRe.FindAllStringSubmatch(text, -1) {
		if v, ok := money.Parse(m[1]); ok && v >= minFallbackTotal && v <= maxTotal && v > best {
			best = v
		}
	}
	if best == 0 {
		return nil
	}
	return &best
}

func extractReceiptDate(ls []string) *time.Time {
	for _, l := range head(ls, 10) {
		for i, re := range receiptDatePatterns {
			m := re.FindStringSubmatch(l)
			if m == nil {
				continue
			}
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			if i == 1 {
				y += 2000
			}
			if y < 2020 || y > 2030 {
				continue
			}
			if t, ok := calendarDate(y, mo, d); ok {
				return &t
			}
		}
	}
	return nil
}

func extractStoreName(ls []string) *string {
	for _, l := range ls {
		m := storeLabelRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		name := cleanName(m[1])
		if name != "" && !digitRunRe.MatchString(name) {
			return &name
		}
	}

	for _, l := range head(ls, 5) {
		n := utf8.RuneCountInString(l)
		if n < 2 || n > 20 || digitRunRe.MatchString(l) || containsAny(l, receiptStopwords) {
			continue
		}
		if name := cleanName(l); name != "" {
			return &name
		}
	}
	return nil
}

func cleanName(s string) string {
	s = bracketRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func extractItems(ls []string) []models.ReceiptItem {
	items := []models.ReceiptItem{}
	for _, l := range ls {
		if len(items) == maxReceiptItems {
			break
		}
		if containsAny(l, receiptStopwords) {
			continue
		}
		if item, ok := parseItem(l); ok {
			items = append(items, item)
		}
	}
	return items
}

func parseItem(line string) (models.ReceiptItem, bool) {
	var item models.ReceiptItem
	if m := itemQtyRe.FindStringSubmatch(line); m != nil {
		qty, _ := strconv.Atoi(m[2])
		unit, ok := money.Parse(m[3])
		if !ok || qty == 0 {
			return item, false
		}
		total := unit * money.Money(qty)
		if m[4] != "" {
			if total, ok = money.Parse(m[4]); !ok {
				return item, false
			}
		}
		item = models.ReceiptItem{Name: strings.TrimSpace(m[1]), Quantity: qty, UnitPrice: unit, TotalPrice: total}
	} else if m := itemTotalRe.FindStringSubmatch(line); m != nil {
		total, ok := money.Parse(m[2])
		if !ok {
			return item, false
		}
		item = models.ReceiptItem{Name: strings.TrimSpace(m[1]), Quantity: 1, UnitPrice: total, TotalPrice: total}
	} else {
		return item, false
	}

	n := utf8.RuneCountInString(item.Name)
	if item.TotalPrice < minItemPrice || item.TotalPrice > maxItemPrice || n < 2 || n > 30 || allDigitsRe.MatchString(item.Name) {
		return item, false
	}
	return item, true
}
