package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/k1300k/smart-stocks/internal/feature/portfolio/domain/entity"
)

// bom is the UTF-8 byte-order mark; Excel needs it to detect Korean text.
const bom = "\uFEFF"

// tagSeparator joins a holding's tags inside one CSV cell.
const tagSeparator = ";"

// Column names are the format contract; the header row identifies the
// format version.
var (
	csvHeadersV2 = []string{
		"종목코드", "종목명", "보유수량",
		"평균매수가(원)", "평균매수가(달러)",
		"현재가(원)", "현재가(달러)",
		"섹터", "태그",
	}

	// requiredHeadersV1 identifies the legacy single-currency export.
	requiredHeadersV1 = []string{"종목코드", "종목명", "보유수량", "평균매수가", "현재가"}
)

// ErrEmptyCSV is returned when the input holds no data rows.
var ErrEmptyCSV = errors.New("csv contains no data rows")

// ErrUnknownCSVFormat is returned when the header row matches neither the
// dual-currency nor the legacy column set.
var ErrUnknownCSVFormat = errors.New("unrecognized csv header")

// ExportCSV renders the holdings as a dual-currency CSV document with a
// leading UTF-8 BOM and standard quoting.
func ExportCSV(holdings []entity.Holding) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(bom)

	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeadersV2); err != nil {
		return "", err
	}
	for _, h := range holdings {
		row := []string{
			h.Symbol,
			h.Name,
			formatNumber(h.Quantity),
			formatNumber(h.AvgPriceKrw),
			formatNumber(h.AvgPriceUsd),
			formatNumber(h.CurrentPriceKrw),
			formatNumber(h.CurrentPriceUsd),
			h.Sector,
			strings.Join(h.Tags, tagSeparator),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ImportCSV parses a CSV document into holdings. The format version is
// detected from the header column set; legacy single-currency rows are
// upgraded through the given USD→KRW rate. Rows without symbol or name are
// dropped.
func ImportCSV(content string, usdToKrw float64) ([]entity.Holding, error) {
	content = strings.TrimPrefix(content, bom)

	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1 // ragged rows tolerated; missing cells read as empty
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyCSV
	}

	header := records[0]
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	switch {
	case containsAll(idx, csvHeadersV2[:7]):
		return parseRowsV2(records[1:], idx), nil
	case containsAll(idx, requiredHeadersV1):
		return parseRowsV1(records[1:], idx, usdToKrw), nil
	default:
		return nil, ErrUnknownCSVFormat
	}
}

func parseRowsV2(rows [][]string, idx map[string]int) []entity.Holding {
	holdings := make([]entity.Holding, 0, len(rows))
	for _, row := range rows {
		h := entity.Holding{
			Symbol:          cell(row, idx, "종목코드"),
			Name:            cell(row, idx, "종목명"),
			Quantity:        parseNumber(cell(row, idx, "보유수량")),
			AvgPriceKrw:     parseNumber(cell(row, idx, "평균매수가(원)")),
			AvgPriceUsd:     parseNumber(cell(row, idx, "평균매수가(달러)")),
			CurrentPriceKrw: parseNumber(cell(row, idx, "현재가(원)")),
			CurrentPriceUsd: parseNumber(cell(row, idx, "현재가(달러)")),
			Sector:          cell(row, idx, "섹터"),
			Tags:            splitTags(cell(row, idx, "태그")),
		}
		h.Normalize()
		if h.Valid() {
			holdings = append(holdings, h)
		}
	}
	return holdings
}

func parseRowsV1(rows [][]string, idx map[string]int, usdToKrw float64) []entity.Holding {
	holdings := make([]entity.Holding, 0, len(rows))
	for _, row := range rows {
		rec := LegacyHolding{
			Symbol:       cell(row, idx, "종목코드"),
			Name:         cell(row, idx, "종목명"),
			Quantity:     parseNumber(cell(row, idx, "보유수량")),
			AvgPrice:     parseNumber(cell(row, idx, "평균매수가")),
			CurrentPrice: parseNumber(cell(row, idx, "현재가")),
			Currency:     strings.ToUpper(cell(row, idx, "통화")),
			Sector:       cell(row, idx, "섹터"),
			Tags:         splitTags(cell(row, idx, "태그")),
		}
		h := rec.Upgrade(usdToKrw)
		if h.Valid() {
			holdings = append(holdings, h)
		}
	}
	return holdings
}

func containsAll(idx map[string]int, names []string) bool {
	for _, n := range names {
		if _, ok := idx[n]; !ok {
			return false
		}
	}
	return true
}

func cell(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, tagSeparator)
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseNumber coerces malformed numerics to 0 at the boundary so the
// valuation code never sees them.
func parseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
