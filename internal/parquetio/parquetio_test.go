package parquetio

import (
	"reflect"
	"testing"

	"github.com/gyeh/scuolestats/internal/frame"
)

func TestWriteReadFile(t *testing.T) {
	f := frame.New("regione", "codice_comune", "ALUNNI")
	rows := [][]string{
		{"LAZIO", "058091", "40"},
		{"LOMBARDIA", "", "18"},
		{"", "001001", ""},
	}
	for _, r := range rows {
		if err := f.AppendStrings(r...); err != nil {
			t.Fatal(err)
		}
	}

	path, err := WriteFile(t.TempDir(), "studenti_aggr", f)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if !reflect.DeepEqual(got.Columns(), f.Columns()) {
		t.Errorf("columns = %v, want %v", got.Columns(), f.Columns())
	}
	if got.Len() != f.Len() {
		t.Fatalf("rows = %d, want %d", got.Len(), f.Len())
	}
	for i := 0; i < f.Len(); i++ {
		if !reflect.DeepEqual(got.Row(i), f.Row(i)) {
			t.Errorf("row %d = %v, want %v", i, got.Row(i), f.Row(i))
		}
	}
}

func TestWriteFile_Empty(t *testing.T) {
	path, err := WriteFile(t.TempDir(), "valutazione", frame.New("codice_scuola"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 0 {
		t.Errorf("rows = %d, want 0", got.Len())
	}
}

func TestSchema_OptionalStrings(t *testing.T) {
	f := frame.New("b", "a")
	s := Schema("t", f)
	fields := s.Fields()
	if len(fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(fields))
	}
	for _, fld := range fields {
		if !fld.Optional() {
			t.Errorf("field %s is not optional", fld.Name())
		}
	}
}
