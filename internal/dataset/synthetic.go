package dataset

import (
	"strconv"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// SyntheticRows is the size of the generated demo dataset.
const SyntheticRows = 1000

const syntheticSeed = 42

var (
	transactionTypes = []string{"purchase", "transfer", "withdrawal", "payment"}
	locations        = []string{
		"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
		"Miami", "Seattle", "Boston", "Atlanta", "Denver",
	}
	genders = []string{"M", "F"}
)

// Synthetic generates the fallback demo dataset: 1000 transactions at
// 10-minute intervals with exponentially distributed amounts (mean 100),
// a 5% base fraud rate, and every amount over 500 forced fraudulent.
// Generation is seeded, so successive calls produce identical tables.
func Synthetic() *Table {
	rng := rand.New(rand.NewSource(syntheticSeed))
	amounts := distuv.Exponential{Rate: 1.0 / 100.0, Src: rng}
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	t := NewTable(
		"transaction_id", "timestamp", "amount", "transaction_type",
		"location", "user_age", "account_age_days", "gender", "is_fraud",
	)

	for i := 0; i < SyntheticRows; i++ {
		amount := amounts.Rand()

		isFraud := 0
		if rng.Float64() < 0.05 {
			isFraud = 1
		}
		// High amounts are always fraudulent in the demo data
		if amount > 500 {
			isFraud = 1
		}

		t.Records = append(t.Records, Record{
			"transaction_id":   strconv.Itoa(i + 1),
			"timestamp":        start.Add(time.Duration(10*i) * time.Minute).Format("2006-01-02 15:04:05"),
			"amount":           strconv.FormatFloat(amount, 'f', -1, 64),
			"transaction_type": transactionTypes[rng.Intn(len(transactionTypes))],
			"location":         locations[rng.Intn(len(locations))],
			"user_age":         strconv.Itoa(18 + rng.Intn(52)),
			"account_age_days": strconv.Itoa(1 + rng.Intn(3649)),
			"gender":           genders[rng.Intn(len(genders))],
			"is_fraud":         strconv.Itoa(isFraud),
		})
	}

	return t
}
