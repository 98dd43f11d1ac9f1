package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestSampleLines_KeepsHeaderAndBytes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "SCUANAGRAFESTAT.csv")
	// "FORLÌ" in ISO-8859-1.
	content := []byte("CODICESCUOLA,COMUNE\nA,FORL\xcc\nB,ROMA\nC,MILANO\n")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "out.csv")

	n, err := sampleLines(src, dst, 1)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if want := "CODICESCUOLA,COMUNE\nA,FORL\xcc\n"; string(got) != want {
		t.Errorf("sample = %q, want %q", got, want)
	}
}

func TestSampleLines_ShortFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "EDIANAGRAFESTA.csv")
	if err := os.WriteFile(src, []byte("A\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	n, err := sampleLines(src, filepath.Join(dir, "out.csv"), 50)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
}

func TestSampleWorkbook(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "comuni.xlsx")
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	for r, row := range [][]interface{}{{"Codice Comune", "Denominazione"}, {"001001", "Agliè"}, {"001002", "Airasca"}, {"001003", "Ala di Stura"}} {
		cell, _ := excelize.CoordinatesToCellName(1, r+1)
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := wb.SaveAs(src); err != nil {
		t.Fatal(err)
	}
	wb.Close()

	dst := filepath.Join(dir, "out.xlsx")
	n, err := sampleWorkbook(src, dst, 2)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}

	out, err := excelize.OpenFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	rows, err := out.GetRows(sheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[1][0] != "001001" {
		t.Errorf("rows = %v", rows)
	}
}

func TestCategory(t *testing.T) {
	if got := category("DOCTIT20161720170831.csv"); got != "staff-titular" {
		t.Errorf("category = %q", got)
	}
	if got := category("README.txt"); got != "" {
		t.Errorf("category = %q, want none", got)
	}
}

func TestSampleWorkbook_RawNumbers(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "comuni.xlsx")
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	header := []interface{}{"Codice Comune", "Popolazione legale"}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatal(err)
	}
	if err := wb.SetCellValue(sheet, "B2", 2617175); err != nil {
		t.Fatal(err)
	}
	style, err := wb.NewStyle(&excelize.Style{NumFmt: 3})
	if err != nil {
		t.Fatal(err)
	}
	if err := wb.SetCellStyle(sheet, "B2", "B2", style); err != nil {
		t.Fatal(err)
	}
	wb.SetCellValue(sheet, "A2", "058091")
	if err := wb.SaveAs(src); err != nil {
		t.Fatal(err)
	}
	wb.Close()

	dst := filepath.Join(dir, "out.xlsx")
	if _, err := sampleWorkbook(src, dst, 10); err != nil {
		t.Fatal(err)
	}
	out, err := excelize.OpenFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	rows, err := out.GetRows(sheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][1] != "2617175" {
		t.Errorf("rows = %v, want population 2617175", rows)
	}
}
