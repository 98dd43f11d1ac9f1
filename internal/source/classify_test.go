package source

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		path, marker, want string
	}{
		{"data/SCUANAGRAFESTAT20181920180901.csv", "", Statale},
		{"data/SCUANAGRAFEPAR20181920180901.csv", "", Paritaria},
		{"data/ALUCORSOETASTA20181920180831.csv", "", Statale},
		{"data/ALUCORSOETAPAR20181920180831.csv", "", Paritaria},
		{"ALUCORSOETASTA20181920180831.csv", "STAT", Paritaria},
		{"SCUANAGRAFESTAT20181920180901.csv", "STAT", Statale},
		{"data/scuanagrafestat.csv", "", Paritaria},
		{"STATS/SCUANAGRAFEPAR.csv", "", Paritaria},
		{"", "", Paritaria},
	}
	for _, tt := range tests {
		if got := Classify(tt.path, tt.marker); got != tt.want {
			t.Errorf("Classify(%q, %q) = %q, want %q", tt.path, tt.marker, got, tt.want)
		}
	}
}
