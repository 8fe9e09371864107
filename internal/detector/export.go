package detector

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
)

// ErrNoData is returned when an export is requested before any table has
// been loaded.
var ErrNoData = errors.New("detector: no data to export")

// WriteCSV streams the working table, including the encoded feature columns
// and fraud probabilities, in the table's column order.
func (d *Detector) WriteCSV(w io.Writer) error {
	d.mu.RLock()
	rows, columns := d.rows, d.columns
	d.mu.RUnlock()

	if rows == nil {
		return ErrNoData
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, r := range rows {
		for i, col := range columns {
			record[i] = exportCell(r, col)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func exportCell(r Transaction, col string) string {
	switch col {
	case "transaction_id":
		return strconv.Itoa(r.ID)
	case "timestamp":
		return r.Timestamp
	case "amount":
		return strconv.FormatFloat(r.Amount, 'f', -1, 64)
	case "transaction_type":
		return r.Type
	case "location":
		return r.Location
	case "is_fraud":
		return strconv.Itoa(r.IsFraud)
	case "transaction_type_encoded":
		return strconv.Itoa(r.TypeCode)
	case "location_encoded":
		return strconv.Itoa(r.LocationCode)
	case "fraud_probability":
		return strconv.FormatFloat(r.Probability, 'f', -1, 64)
	default:
		return r.Extra[col]
	}
}
