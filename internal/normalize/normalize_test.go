package normalize

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegionNames(t *testing.T) {
	tests := []struct {
		in, boundary, metric string
	}{
		{"Emilia-Romagna", "Emilia Romagna", "emilia romagna"},
		{"FRIULI-VENEZIA G.", "FRIULI VENEZIA G.", "friuli venezia g."},
		{"LAZIO", "LAZIO", "lazio"},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := RegionName(tt.in); got != tt.boundary {
			t.Errorf("RegionName(%q) = %q, want %q", tt.in, got, tt.boundary)
		}
		if got := MetricRegionName(tt.in); got != tt.metric {
			t.Errorf("MetricRegionName(%q) = %q, want %q", tt.in, got, tt.metric)
		}
	}
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.csv")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, size, err := FileHash(path)
	if err != nil {
		t.Fatal(err)
	}
	if size != 3 {
		t.Errorf("size = %d, want 3", size)
	}
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("FileHash = %s, want %s", got, want)
	}
	if _, _, err := FileHash(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
