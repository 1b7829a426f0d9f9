package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReadCSVWithTextColumn(t *testing.T) {
	input := "id,text\n1,I love this product\n2,\"Terrible, really bad\"\n3\n"
	table, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	schema := table.Validate()
	if !schema.Valid || schema.TextColumnIndex != 1 {
		t.Fatalf("schema = %+v", schema)
	}
	got := table.Column(schema.TextColumnIndex)
	want := []string{"I love this product", "Terrible, really bad", ""}
	if len(got) != len(want) {
		t.Fatalf("column = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestValidateMissingTextColumn(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("body,score\nhello,1\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	schema := table.Validate()
	if schema.Valid {
		t.Fatal("expected invalid schema")
	}
	if schema.TextColumnIndex != -1 {
		t.Errorf("TextColumnIndex = %d, want -1", schema.TextColumnIndex)
	}
	if len(schema.MissingColumns) != 1 || schema.MissingColumns[0] != TextColumn {
		t.Errorf("MissingColumns = %v", schema.MissingColumns)
	}
}

func TestValidateIsCaseSensitive(t *testing.T) {
	table, _ := ReadCSV(strings.NewReader("Text\nhello\n"))
	if table.Validate().Valid {
		t.Error("'Text' should not satisfy the text column requirement")
	}
}

func TestHeaderBOMAndSpacesTrimmed(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("\uFEFF text ,x\nhello,1\n"))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !table.Validate().Valid {
		t.Errorf("header %q should contain text column", table.Header)
	}
}

func TestEmptyCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if table.Validate().Valid {
		t.Error("empty file has no text column")
	}
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"text", "source"},
		{"Great service", "web"},
		{"Awful delay", "mail"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	table, err := Read(&buf, "upload.xlsx")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	schema := table.Validate()
	if !schema.Valid {
		t.Fatalf("schema = %+v", schema)
	}
	col := table.Column(schema.TextColumnIndex)
	if len(col) != 2 || col[0] != "Great service" || col[1] != "Awful delay" {
		t.Errorf("column = %q", col)
	}
}

func TestReadUnsupportedExtension(t *testing.T) {
	_, err := Read(strings.NewReader("text\nhi\n"), "upload.json")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}
