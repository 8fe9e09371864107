package detector

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/mbd888/fraudlens/internal/pagination"
)

const searchLimit = 20

// Fixed histogram bins for the amount distribution chart. The last bucket is
// open-ended up to maxBinAmount; amounts outside [0, maxBinAmount] are
// excluded from the chart entirely.
var (
	amountDividers = []float64{0, 100, 500, 1000, 3000, 5000, math.Inf(1)}
	amountLabels   = []string{"0-100", "100-500", "500-1k", "1k-3k", "3k-5k", "5k+"}
)

const maxBinAmount = 10000

// timestampLayouts are tried in order when bucketing rows by hour.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (d *Detector) snapshot() []Transaction {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rows
}

// Statistics summarizes the working table; an empty detector reports zeros.
func (d *Detector) Statistics() Stats {
	rows := d.snapshot()
	total := len(rows)
	if total == 0 {
		return Stats{}
	}
	fraud := 0
	for _, r := range rows {
		fraud += r.IsFraud
	}
	return Stats{
		TotalTransactions:      total,
		FraudulentTransactions: fraud,
		LegitimateTransactions: total - fraud,
		FraudRate:              round2(float64(fraud) / float64(total) * 100),
	}
}

// Transactions returns one 1-indexed page of formatted rows; the page count
// comes from pagination.TotalPages, trailing page included.
func (d *Detector) Transactions(page, perPage int) TransactionPage {
	rows := d.snapshot()
	if rows == nil {
		return TransactionPage{Transactions: []TransactionView{}}
	}

	start, end := pagination.Params{Page: page, PerPage: perPage}.Bounds(len(rows))
	views := make([]TransactionView, 0, end-start)
	for _, r := range rows[start:end] {
		views = append(views, r.view())
	}
	return TransactionPage{
		Transactions: views,
		TotalPages:   pagination.TotalPages(len(rows), perPage),
	}
}

// FraudDistribution counts legitimate and fraudulent rows.
func (d *Detector) FraudDistribution() ChartData {
	rows := d.snapshot()
	if rows == nil {
		return emptyChart()
	}
	fraud := 0
	for _, r := range rows {
		fraud += r.IsFraud
	}
	return ChartData{
		Labels: []string{"Legitimate", "Fraudulent"},
		Data:   []int{len(rows) - fraud, fraud},
	}
}

// AmountDistribution buckets amounts into the fixed bins, dropping buckets
// that end up empty.
func (d *Detector) AmountDistribution() ChartData {
	rows := d.snapshot()
	if rows == nil {
		return emptyChart()
	}

	amounts := make([]float64, 0, len(rows))
	for _, r := range rows {
		if r.Amount >= 0 && r.Amount <= maxBinAmount {
			amounts = append(amounts, r.Amount)
		}
	}
	sort.Float64s(amounts)
	counts := stat.Histogram(nil, amountDividers, amounts, nil)

	chart := emptyChart()
	for i, c := range counts {
		if c == 0 {
			continue
		}
		chart.Labels = append(chart.Labels, amountLabels[i])
		chart.Data = append(chart.Data, int(c))
	}
	return chart
}

// FraudByType counts fraud rows per transaction type, labels title-cased.
// With no fraud at all it reports every observed type with a zero count.
func (d *Detector) FraudByType() ChartData {
	rows := d.snapshot()
	if rows == nil {
		return emptyChart()
	}

	counts := make(map[string]int)
	for _, r := range rows {
		if r.IsFraud == 1 {
			counts[r.Type]++
		}
	}

	if len(counts) == 0 {
		chart := emptyChart()
		seen := make(map[string]bool)
		for _, r := range rows {
			if seen[r.Type] {
				continue
			}
			seen[r.Type] = true
			chart.Labels = append(chart.Labels, titleCase(r.Type))
			chart.Data = append(chart.Data, 0)
		}
		return chart
	}

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	chart := emptyChart()
	for _, t := range types {
		chart.Labels = append(chart.Labels, titleCase(t))
		chart.Data = append(chart.Data, counts[t])
	}
	return chart
}

// LocationRisk returns the top five locations by fraud count, descending,
// with a placeholder entry when the table has no fraud rows.
func (d *Detector) LocationRisk() ChartData {
	rows := d.snapshot()
	if rows == nil {
		return emptyChart()
	}

	counts := make(map[string]int)
	for _, r := range rows {
		if r.IsFraud == 1 {
			counts[r.Location]++
		}
	}
	if len(counts) == 0 {
		return ChartData{Labels: []string{"No Fraud Data"}, Data: []int{0}}
	}

	locations := make([]string, 0, len(counts))
	for l := range counts {
		locations = append(locations, l)
	}
	sort.Slice(locations, func(i, j int) bool {
		if counts[locations[i]] != counts[locations[j]] {
			return counts[locations[i]] > counts[locations[j]]
		}
		return locations[i] < locations[j]
	})
	if len(locations) > 5 {
		locations = locations[:5]
	}

	chart := emptyChart()
	for _, l := range locations {
		chart.Labels = append(chart.Labels, l)
		chart.Data = append(chart.Data, counts[l])
	}
	return chart
}

// Search returns up to 20 rows whose location, type, or amount contains the
// query, case-insensitively, in table order.
func (d *Detector) Search(query string) []TransactionView {
	results := []TransactionView{}
	rows := d.snapshot()
	if rows == nil || query == "" {
		return results
	}

	q := strings.ToLower(query)
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Location), q) ||
			strings.Contains(strings.ToLower(r.Type), q) ||
			strings.Contains(strconv.FormatFloat(r.Amount, 'f', -1, 64), q) {
			results = append(results, r.view())
			if len(results) == searchLimit {
				break
			}
		}
	}
	return results
}

// HourlyFraud sums fraud labels per hour of day across all 24 hours. Rows
// whose timestamps do not parse are skipped.
func (d *Detector) HourlyFraud() []HourlyPoint {
	var buckets [24]int
	for _, r := range d.snapshot() {
		ts, ok := parseTimestamp(r.Timestamp)
		if !ok {
			continue
		}
		buckets[ts.Hour()] += r.IsFraud
	}

	points := make([]HourlyPoint, 24)
	for h := range points {
		points[h] = HourlyPoint{Hour: h, IsFraud: buckets[h]}
	}
	return points
}

// RowCount returns the size of the working table.
func (d *Detector) RowCount() int {
	return len(d.snapshot())
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func emptyChart() ChartData {
	return ChartData{Labels: []string{}, Data: []int{}}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
