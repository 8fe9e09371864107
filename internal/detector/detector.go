// Package detector trains and serves the fraud classification model.
//
// A Detector owns one working table of prepared transactions, two categorical
// encoders, and a fitted tree ensemble. Training replaces all of them in a
// single swap; every query view reads a consistent snapshot. A failed fit
// keeps the freshly prepared table queryable (with zero probabilities) while
// the detector itself stays untrained.
package detector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mbd888/fraudlens/internal/dataset"
	"github.com/mbd888/fraudlens/internal/forest"
	"github.com/mbd888/fraudlens/internal/logging"
	"github.com/mbd888/fraudlens/internal/metrics"
	"github.com/mbd888/fraudlens/internal/traces"
)

// Detector scores transactions against a model trained on the current table.
type Detector struct {
	mu      sync.RWMutex
	rows    []Transaction
	columns []string
	typeEnc *Encoder
	locEnc  *Encoder
	model   *forest.Forest

	cfg forest.Config
}

// New creates an untrained detector with the default forest configuration.
func New() *Detector {
	return &Detector{cfg: forest.DefaultConfig()}
}

// WithForestConfig overrides the training hyperparameters.
func (d *Detector) WithForestConfig(cfg forest.Config) *Detector {
	d.cfg = cfg
	return d
}

// Train prepares the table, fits both encoders and the forest, and installs
// the scored rows as the new working table. On a fit error (for example a
// single-class label column) the prepared table is still installed with zero
// probabilities and the error is returned; the detector stays untrained and
// Analyze degrades to its sentinel result.
func (d *Detector) Train(ctx context.Context, table *dataset.Table) error {
	ctx, span := traces.StartSpan(ctx, "detector.train", traces.Rows(table.Len()))
	defer span.End()

	start := time.Now()
	log := logging.L(ctx)
	log.Info("training fraud model", "rows", table.Len())

	prep := prepare(table)

	typeVals := make([]string, len(prep.rows))
	locVals := make([]string, len(prep.rows))
	for i, r := range prep.rows {
		typeVals[i] = r.Type
		locVals[i] = r.Location
	}
	typeEnc := FitEncoder(typeVals)
	locEnc := FitEncoder(locVals)

	features := make([][]float64, len(prep.rows))
	labels := make([]int, len(prep.rows))
	for i := range prep.rows {
		prep.rows[i].TypeCode = typeEnc.Encode(prep.rows[i].Type)
		prep.rows[i].LocationCode = locEnc.Encode(prep.rows[i].Location)
		features[i] = []float64{
			prep.rows[i].Amount,
			float64(prep.rows[i].TypeCode),
			float64(prep.rows[i].LocationCode),
		}
		labels[i] = prep.rows[i].IsFraud
	}

	model, err := forest.Fit(features, labels, d.cfg)
	if err == nil {
		for i := range prep.rows {
			prep.rows[i].Probability = model.PredictProba(features[i])
		}
	}

	columns := append(prep.columns, "transaction_type_encoded", "location_encoded", "fraud_probability")

	d.mu.Lock()
	d.rows = prep.rows
	d.columns = columns
	d.typeEnc = typeEnc
	d.locEnc = locEnc
	d.model = model
	d.mu.Unlock()

	metrics.DatasetRows.Set(float64(len(prep.rows)))
	metrics.ModelTrainDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ModelTrainsTotal.WithLabelValues("failed").Inc()
		log.Error("model fit failed, table kept with zero probabilities", "error", err)
		return fmt.Errorf("fit fraud model: %w", err)
	}
	metrics.ModelTrainsTotal.WithLabelValues("ok").Inc()
	log.Info("model trained",
		"rows", len(prep.rows),
		"types", len(typeEnc.Classes()),
		"locations", len(locEnc.Classes()),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Trained reports whether a fitted model is installed.
func (d *Detector) Trained() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.model != nil
}

// HasData reports whether a working table has been installed, trained or not.
func (d *Detector) HasData() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rows != nil
}

// Analyze scores a single transaction given as loose JSON fields. Absent
// fields fall back to defaults (amount 0, type "unknown", location
// "Unknown"); a present but unreadable amount yields the ERROR sentinel
// instead of failing the request.
func (d *Detector) Analyze(ctx context.Context, fields map[string]any) Result {
	_, span := traces.StartSpan(ctx, "detector.analyze")
	defer span.End()

	d.mu.RLock()
	model, typeEnc, locEnc := d.model, d.typeEnc, d.locEnc
	d.mu.RUnlock()

	if model == nil {
		return Result{
			Error:          "Model not trained",
			RiskLevel:      RiskUnknown,
			Recommendation: "Wait",
		}
	}

	amount, txType, location, ok := RequestFields(fields)
	if !ok {
		logging.L(ctx).Warn("analyze request with unreadable amount", "amount", fields["amount"])
		return Result{RiskLevel: RiskError, Recommendation: "CHECK LOGS"}
	}

	x := []float64{amount, float64(typeEnc.Encode(txType)), float64(locEnc.Encode(location))}
	prob := model.PredictProba(x)
	level, recommendation := classifyRisk(prob)
	span.SetAttributes(traces.Amount(amount), traces.RiskLevel(level))

	prediction := 0
	if prob >= 0.5 {
		prediction = 1
	}
	return Result{
		IsFraud:        prediction,
		Probability:    prob,
		RiskLevel:      level,
		Recommendation: recommendation,
	}
}

// RequestFields reads the analyzable fields from a loose request body with
// the same defaults and normalization Analyze applies, so callers recording
// the request store exactly what was scored. ok is false when the amount is
// present but unreadable.
func RequestFields(fields map[string]any) (amount float64, txType, location string, ok bool) {
	amount, ok = amountField(fields)
	txType = strings.ToLower(stringField(fields, "transaction_type", unknownClass))
	location = titleCase(stringField(fields, "location", unknownClass))
	return amount, txType, location, ok
}

func classifyRisk(prob float64) (level, recommendation string) {
	switch {
	case prob > highRiskThreshold:
		return RiskHigh, "BLOCK"
	case prob > mediumRiskThreshold:
		return RiskMedium, "REVIEW"
	default:
		return RiskLow, "APPROVE"
	}
}

// amountField reads the amount value from loose JSON input. Absent means
// zero; present but non-numeric means unreadable.
func amountField(fields map[string]any) (float64, bool) {
	v, present := fields["amount"]
	if !present {
		return 0, true
	}
	switch a := v.(type) {
	case float64:
		return a, true
	case int:
		return float64(a), true
	case int64:
		return float64(a), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if a {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// stringField reads a loose JSON field as a string, formatting non-string
// scalars the way they appeared in the request.
func stringField(fields map[string]any, key, def string) string {
	v, present := fields[key]
	if !present || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
