package dataset

import (
	"reflect"
	"testing"
)

func TestTableColumns(t *testing.T) {
	tbl := NewTable("a", "b")

	if !tbl.HasColumn("a") || !tbl.HasColumn("b") {
		t.Fatal("expected declared columns to be present")
	}
	if tbl.HasColumn("c") {
		t.Fatal("expected undeclared column to be absent")
	}

	tbl.AddColumn("c")
	tbl.AddColumn("a") // no duplicate
	if got := len(tbl.Columns); got != 3 {
		t.Fatalf("expected 3 columns, got %d", got)
	}
}

func TestTableColumn_MissingCells(t *testing.T) {
	tbl := NewTable("amount")
	tbl.Records = append(tbl.Records, Record{"amount": "10"}, Record{})

	got := tbl.Column("amount")
	want := []string{"10", ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Column(amount) = %v, want %v", got, want)
	}
}

func TestTableClone_Independent(t *testing.T) {
	tbl := NewTable("amount")
	tbl.Records = append(tbl.Records, Record{"amount": "10"})

	cp := tbl.Clone()
	cp.AddColumn("extra")
	cp.Records[0]["amount"] = "99"

	if tbl.HasColumn("extra") {
		t.Error("clone column change leaked into original")
	}
	if tbl.Records[0]["amount"] != "10" {
		t.Error("clone cell change leaked into original")
	}
}

func TestTableConcat_UnionsColumns(t *testing.T) {
	a := NewTable("x")
	a.Records = append(a.Records, Record{"x": "1"})

	b := NewTable("x", "y")
	b.Records = append(b.Records, Record{"x": "2", "y": "3"})

	a.Concat(b)

	if a.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", a.Len())
	}
	if !a.HasColumn("y") {
		t.Error("expected concat to union columns")
	}
	// First row never had a y cell
	if _, ok := a.Records[0]["y"]; ok {
		t.Error("expected first row to keep only its source cells")
	}
}
