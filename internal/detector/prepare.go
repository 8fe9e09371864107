package detector

import (
	"math/rand"
	"strconv"
	"strings"
	"unicode"

	"github.com/mbd888/fraudlens/internal/dataset"
)

// syntheticTypes is the fallback vocabulary when a table carries neither a
// transaction_type nor a device_type column.
var syntheticTypes = []string{"purchase", "transfer", "withdrawal", "payment"}

// Columns consumed by the pipeline itself; everything else passes through
// untouched into Transaction.Extra.
var schemaColumns = map[string]bool{
	"transaction_id":   true,
	"timestamp":        true,
	"amount":           true,
	"transaction_type": true,
	"location":         true,
	"is_fraud":         true,
}

// prepared is the output of the preparation stage: fully populated rows plus
// the column order the table will keep for export.
type prepared struct {
	columns []string
	rows    []Transaction
}

// prepare normalizes a raw table into Transaction rows. Rules, in order:
// synthesize transaction_id when absent; default is_fraud to 0; coerce
// amount to a number with 0 on failure; resolve transaction_type from the
// column itself, a device_type column, or the synthetic vocabulary; title-case
// location with "Unknown" as the default. Malformed input always degrades to
// a safe default, never to an error.
func prepare(t *dataset.Table) prepared {
	hasID := t.HasColumn("transaction_id")
	hasTimestamp := t.HasColumn("timestamp")
	hasFraud := t.HasColumn("is_fraud")
	hasAmount := t.HasColumn("amount")
	hasType := t.HasColumn("transaction_type")
	hasDevice := t.HasColumn("device_type")
	hasLocation := t.HasColumn("location")

	columns := make([]string, 0, len(t.Columns)+5)
	columns = append(columns, t.Columns...)
	if !hasID {
		columns = append(columns, "transaction_id")
	}
	if !hasFraud {
		columns = append(columns, "is_fraud")
	}
	if !hasAmount {
		columns = append(columns, "amount")
	}
	if !hasType {
		columns = append(columns, "transaction_type")
	}
	if !hasLocation {
		columns = append(columns, "location")
	}

	rows := make([]Transaction, len(t.Records))
	for i, rec := range t.Records {
		row := Transaction{ID: i + 1, Timestamp: "-"}

		if hasID {
			row.ID = parseIntDefault(rec["transaction_id"], 0)
		}
		if hasTimestamp {
			row.Timestamp = rec["timestamp"]
		}
		if hasFraud {
			row.IsFraud = parseLabel(rec["is_fraud"])
		}
		if hasAmount {
			row.Amount = parseFloatDefault(rec["amount"], 0)
		}

		switch {
		case hasType:
			row.Type = lowerOrDefault(rec["transaction_type"], unknownClass)
		case hasDevice:
			row.Type = lowerOrDefault(rec["device_type"], unknownClass)
		default:
			row.Type = syntheticTypes[rand.Intn(len(syntheticTypes))]
		}

		if hasLocation {
			row.Location = titleOrDefault(rec["location"], "Unknown")
		} else {
			row.Location = "Unknown"
		}

		for _, col := range t.Columns {
			if schemaColumns[col] {
				continue
			}
			if row.Extra == nil {
				row.Extra = make(map[string]string)
			}
			row.Extra[col] = rec[col]
		}
		rows[i] = row
	}

	return prepared{columns: columns, rows: rows}
}

func parseIntDefault(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func parseFloatDefault(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return def
	}
	return v
}

// parseLabel folds the is_fraud cell to a 0/1 label; anything non-numeric
// counts as legitimate.
func parseLabel(s string) int {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v == 0 {
		return 0
	}
	return 1
}

func lowerOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return strings.ToLower(s)
}

func titleOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return titleCase(s)
}

// titleCase uppercases the first letter of every letter run and lowercases
// the rest, so "new york" becomes "New York" and "LOS ANGELES" becomes
// "Los Angeles". Digits and punctuation end a run.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if inRun {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			inRun = true
		} else {
			b.WriteRune(r)
			inRun = false
		}
	}
	return b.String()
}
