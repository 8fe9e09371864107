package detector

import (
	"context"
	"testing"

	"github.com/mbd888/fraudlens/internal/dataset"
)

func trainedOn(t *testing.T, table *dataset.Table) *Detector {
	t.Helper()
	d := New()
	if err := d.Train(context.Background(), table); err != nil {
		t.Fatalf("Train: %v", err)
	}
	return d
}

func TestTrain_Synthetic(t *testing.T) {
	d := trainedOn(t, dataset.Synthetic())

	if !d.Trained() {
		t.Fatal("Trained() = false after successful fit")
	}
	if !d.HasData() {
		t.Fatal("HasData() = false after training")
	}

	stats := d.Statistics()
	if stats.TotalTransactions != dataset.SyntheticRows {
		t.Errorf("TotalTransactions = %d, want %d", stats.TotalTransactions, dataset.SyntheticRows)
	}
	if stats.FraudulentTransactions == 0 {
		t.Error("synthetic data should contain fraud rows")
	}
	if stats.FraudulentTransactions+stats.LegitimateTransactions != stats.TotalTransactions {
		t.Error("fraud and legitimate counts should sum to the total")
	}
	if stats.FraudRate <= 0 || stats.FraudRate >= 100 {
		t.Errorf("FraudRate = %v, want within (0, 100)", stats.FraudRate)
	}
}

func TestAnalyze_Untrained(t *testing.T) {
	d := New()
	res := d.Analyze(context.Background(), map[string]any{"amount": 100.0})

	if res.Error != "Model not trained" {
		t.Errorf("Error = %q, want Model not trained", res.Error)
	}
	if res.RiskLevel != RiskUnknown || res.Recommendation != "Wait" {
		t.Errorf("got %s/%s, want UNKNOWN/Wait", res.RiskLevel, res.Recommendation)
	}
	if res.IsFraud != 0 || res.Probability != 0 {
		t.Errorf("sentinel should carry zeroed prediction, got %d/%v", res.IsFraud, res.Probability)
	}
}

func TestAnalyze_SeparatesHighAndLowAmounts(t *testing.T) {
	d := trainedOn(t, dataset.Synthetic())
	ctx := context.Background()

	high := d.Analyze(ctx, map[string]any{
		"amount":           5000.0,
		"transaction_type": "purchase",
		"location":         "New York",
	})
	low := d.Analyze(ctx, map[string]any{
		"amount":           10.0,
		"transaction_type": "purchase",
		"location":         "New York",
	})

	if high.Probability <= low.Probability {
		t.Fatalf("high-amount probability %v not above low-amount %v", high.Probability, low.Probability)
	}
	if high.Probability < 0.5 {
		t.Errorf("probability for amount 5000 = %v, want >= 0.5", high.Probability)
	}
	if high.IsFraud != 1 {
		t.Errorf("IsFraud for amount 5000 = %d, want 1", high.IsFraud)
	}
	if low.Probability > 0.3 {
		t.Errorf("probability for amount 10 = %v, want <= 0.3", low.Probability)
	}
	if low.RiskLevel != RiskLow || low.Recommendation != "APPROVE" {
		t.Errorf("low-amount result %s/%s, want LOW/APPROVE", low.RiskLevel, low.Recommendation)
	}
}

func TestAnalyze_DefaultsForAbsentFields(t *testing.T) {
	d := trainedOn(t, dataset.Synthetic())

	res := d.Analyze(context.Background(), map[string]any{})
	if res.RiskLevel == RiskError || res.RiskLevel == RiskUnknown {
		t.Fatalf("empty fields should analyze with defaults, got %s", res.RiskLevel)
	}
	if res.Probability > 0.5 {
		t.Errorf("zero-amount default scored %v, want below 0.5", res.Probability)
	}
}

func TestAnalyze_StringAmount(t *testing.T) {
	d := trainedOn(t, dataset.Synthetic())
	ctx := context.Background()

	asString := d.Analyze(ctx, map[string]any{"amount": "5000", "location": "New York"})
	asNumber := d.Analyze(ctx, map[string]any{"amount": 5000.0, "location": "New York"})
	if asString.Probability != asNumber.Probability {
		t.Errorf("string amount scored %v, numeric scored %v", asString.Probability, asNumber.Probability)
	}
}

func TestAnalyze_UnreadableAmount(t *testing.T) {
	d := trainedOn(t, dataset.Synthetic())
	ctx := context.Background()

	for _, amount := range []any{"not-a-number", nil, []any{1.0}, map[string]any{"v": 1.0}} {
		res := d.Analyze(ctx, map[string]any{"amount": amount})
		if res.RiskLevel != RiskError || res.Recommendation != "CHECK LOGS" {
			t.Errorf("amount %v: got %s/%s, want ERROR/CHECK LOGS", amount, res.RiskLevel, res.Recommendation)
		}
		if res.Error != "" {
			t.Errorf("amount %v: degraded result should not carry an error field, got %q", amount, res.Error)
		}
	}
}

func TestAnalyze_UnseenCategoricals(t *testing.T) {
	d := trainedOn(t, dataset.Synthetic())

	res := d.Analyze(context.Background(), map[string]any{
		"amount":           50.0,
		"transaction_type": "teleport",
		"location":         "Atlantis",
	})
	if res.RiskLevel == RiskError {
		t.Fatal("unseen categorical values must not produce an error result")
	}
}

func TestTrain_SingleClassKeepsTable(t *testing.T) {
	table := testTable(
		[]string{"amount", "transaction_type", "location", "is_fraud"},
		[]string{"10", "purchase", "New York", "0"},
		[]string{"20", "transfer", "Chicago", "0"},
		[]string{"30", "payment", "Boston", "0"},
	)

	d := New()
	err := d.Train(context.Background(), table)
	if err == nil {
		t.Fatal("Train on single-class labels should report the fit error")
	}
	if d.Trained() {
		t.Error("detector should stay untrained after a fit failure")
	}
	if !d.HasData() {
		t.Error("prepared table should still be installed after a fit failure")
	}

	stats := d.Statistics()
	if stats.TotalTransactions != 3 || stats.FraudulentTransactions != 0 {
		t.Errorf("stats = %+v, want 3 rows and no fraud", stats)
	}
	page := d.Transactions(1, 10)
	if len(page.Transactions) != 3 {
		t.Fatalf("page size = %d, want 3", len(page.Transactions))
	}
	for _, tx := range page.Transactions {
		if tx.Probability != 0 {
			t.Errorf("probability = %v, want 0 after failed fit", tx.Probability)
		}
	}

	res := d.Analyze(context.Background(), map[string]any{"amount": 10.0})
	if res.RiskLevel != RiskUnknown {
		t.Errorf("Analyze after failed fit = %s, want UNKNOWN", res.RiskLevel)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	a := trainedOn(t, dataset.Synthetic())
	b := trainedOn(t, dataset.Synthetic())

	if a.Statistics() != b.Statistics() {
		t.Fatal("statistics differ across identically seeded training runs")
	}
	pa := a.Transactions(1, 20).Transactions
	pb := b.Transactions(1, 20).Transactions
	for i := range pa {
		if pa[i].Probability != pb[i].Probability {
			t.Fatalf("row %d probability differs: %v vs %v", i, pa[i].Probability, pb[i].Probability)
		}
	}
}

func TestTrain_ReplacesPriorTable(t *testing.T) {
	d := trainedOn(t, dataset.Synthetic())

	small := testTable(
		[]string{"amount", "transaction_type", "location", "is_fraud"},
		[]string{"10", "purchase", "New York", "0"},
		[]string{"900", "transfer", "Chicago", "1"},
	)
	if err := d.Train(context.Background(), small); err != nil {
		t.Fatalf("retrain: %v", err)
	}

	stats := d.Statistics()
	if stats.TotalTransactions != 2 {
		t.Errorf("TotalTransactions = %d, want 2 after retrain", stats.TotalTransactions)
	}
	if stats.FraudulentTransactions != 1 {
		t.Errorf("FraudulentTransactions = %d, want 1", stats.FraudulentTransactions)
	}
}
