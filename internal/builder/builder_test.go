package builder

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/gyeh/scuolestats/internal/dictionary"
	"github.com/gyeh/scuolestats/internal/frame"
	"github.com/gyeh/scuolestats/internal/model"
	"github.com/gyeh/scuolestats/internal/source"
	"github.com/gyeh/scuolestats/internal/testutil"
)

func newEnv(t *testing.T, dir string) *Env {
	t.Helper()
	d, err := dictionary.Default()
	if err != nil {
		t.Fatalf("dictionary: %v", err)
	}
	return NewEnv(dir, "", d, Files{}, testutil.NewTestLogger(t))
}

func column(t *testing.T, f *frame.Frame, col string) []string {
	t.Helper()
	vals, err := f.Column(col)
	if err != nil {
		t.Fatalf("column %s: %v (have %v)", col, err, f.Columns())
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}

func TestRegistry_TagsAndLowercases(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteLatin1(t, dir, "SCUANAGRAFESTAT20181920180901.csv",
		"CODICESCUOLA,CODICEPROVINCIA\nRMIC81500A,RM\nRMIC81600B,RM\n")
	testutil.WriteLatin1(t, dir, "SCUANAGRAFEPAR20181920180901.csv",
		"CODICESCUOLA,CODICEPROVINCIA\nRM1A00100B,RM\nMI1E00200C,MI\n")

	f, err := Registry(context.Background(), newEnv(t, dir))
	if err != nil {
		t.Fatalf("Registry: %v", err)
	}
	if f.Len() != 4 {
		t.Fatalf("rows = %d, want 4", f.Len())
	}
	for _, c := range f.Columns() {
		if c != strings.ToLower(c) {
			t.Errorf("column %q is not lowercase", c)
		}
	}
	counts := map[string]int{}
	for _, tag := range column(t, f, "tag") {
		counts[tag]++
	}
	if counts[source.Statale] != 2 || counts[source.Paritaria] != 2 {
		t.Errorf("tag counts = %v, want 2 statale and 2 paritaria", counts)
	}
	if !f.Has("codice_scuola") {
		t.Errorf("columns = %v, want codice_scuola", f.Columns())
	}
}

func TestRegistry_NoFiles(t *testing.T) {
	_, err := Registry(context.Background(), newEnv(t, t.TempDir()))
	if !errors.Is(err, source.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestEvaluation_RowCountIsSum(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteLatin1(t, dir, "VALUTAZIONESTA.csv", "ANNOSCOLASTICO,CODICESCUOLA,ESITIAMMESSI\n201819,A,10\n201819,B,11\n201819,C,12\n")
	testutil.WriteLatin1(t, dir, "VALUTAZIONEPAR.csv", "ANNOSCOLASTICO,CODICESCUOLA,ESITIAMMESSI\n201819,D,1\n")

	f, err := Evaluation(context.Background(), newEnv(t, dir))
	if err != nil {
		t.Fatal(err)
	}
	if f.Len() != 4 {
		t.Errorf("rows = %d, want 4", f.Len())
	}
	if got, want := f.Columns(), []string{"anno_scolastico", "codice_scuola", "ammessi", "tag"}; !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
}

func TestStaff_OuterMergeKeepsEveryRow(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteLatin1(t, dir, DefaultStaffTitularFile,
		"ANNOSCOLASTICO,PROVINCIA,ORDINESCUOLA,TIPOPOSTO,FASCIAETA,DOCENTITITOLARIMASCHI,DOCENTITITOLARIFEMMINE\n"+
			"201617,ROMA,PRIMARIA,NORMALE,35-44,10,90\n"+
			"201617,MILANO,PRIMARIA,NORMALE,35-44,8,70\n")
	testutil.WriteLatin1(t, dir, DefaultStaffSubstituteFile,
		"ANNOSCOLASTICO,PROVINCIA,ORDINESCUOLA,TIPOPOSTO,TIPOSUPPLENZA,FASCIAETA,DOCENTISUPPLENTIMASCHI,DOCENTISUPPLENTIFEMMINE\n"+
			"201617,ROMA,PRIMARIA,NORMALE,ANNUALE,35-44,1,4\n"+
			"201617,ROMA,PRIMARIA,NORMALE,TEMPORANEA,35-44,2,5\n"+
			"201617,ROMA,PRIMARIA,SOSTEGNO,ANNUALE,35-44,0,3\n")

	f, err := Staff(context.Background(), newEnv(t, dir))
	if err != nil {
		t.Fatalf("Staff: %v", err)
	}
	// Two titular rows plus two aggregated substitute rows.
	if f.Len() != 4 {
		t.Fatalf("rows = %d, want 4", f.Len())
	}
	if got, want := f.Columns(), []string{"PROVINCIA", "ORDINESCUOLA", "TIPOPOSTO", "FASCIAETA", "M", "F", "POSTO"}; !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
	if got, want := column(t, f, "PROVINCIA"), []string{"MILANO", "ROMA", "ROMA", "ROMA"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PROVINCIA = %v, want %v", got, want)
	}
	var found bool
	for i := 0; i < f.Len(); i++ {
		if f.Get(i, "POSTO").S == PostSubstitute && f.Get(i, "TIPOPOSTO").S == "NORMALE" {
			found = true
			if f.Get(i, "M").S != "3" || f.Get(i, "F").S != "9" {
				t.Errorf("aggregated substitutes M=%v F=%v, want 3 and 9", f.Get(i, "M"), f.Get(i, "F"))
			}
		}
	}
	if !found {
		t.Error("aggregated substitute row missing")
	}
}

func TestStaff_MissingFile(t *testing.T) {
	_, err := Staff(context.Background(), newEnv(t, t.TempDir()))
	if !errors.Is(err, source.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

func TestBuildings_SequentialInnerMerge(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteLatin1(t, dir, "EDIANAGRAFESTA20181920180901.csv",
		" ANNOSCOLASTICO , CODICESCUOLA , CODICEEDIFICIO ,ANNOCOSTRUZIONE\n"+
			"201819,A,E1,1960\n"+
			"201819,B,E2,Informazione assente\n"+
			"201819,C,E3,1990\n")
	testutil.WriteLatin1(t, dir, "EDIVINCOLISTA20181920180901.csv",
		"ANNOSCOLASTICO,CODICESCUOLA,CODICEEDIFICIO,VINCOLIZONASISMICA\n"+
			"201819,A,E1,2B\n"+
			"201819,B,E2,-\n"+
			"201819,Z,E9,1\n")

	f, err := Buildings(context.Background(), newEnv(t, dir))
	if err != nil {
		t.Fatalf("Buildings: %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("rows = %d, want 2", f.Len())
	}
	if got, want := column(t, f, "codice_scuola"), []string{"A", "B"}; !reflect.DeepEqual(got, want) {
		t.Errorf("codice_scuola = %v, want %v", got, want)
	}
	if got, want := column(t, f, "anno_costruzione"), []string{"1960", "<null>"}; !reflect.DeepEqual(got, want) {
		t.Errorf("anno_costruzione = %v, want %v", got, want)
	}
	if got, want := column(t, f, "zona_sismica"), []string{"2", "<null>"}; !reflect.DeepEqual(got, want) {
		t.Errorf("zona_sismica = %v, want %v", got, want)
	}
}

func TestBuildings_SeismicCodomain(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteLatin1(t, dir, "EDIVINCOLISTA.csv",
		"ANNOSCOLASTICO,CODICESCUOLA,CODICEEDIFICIO,VINCOLIZONASISMICA\n"+
			"1,A,E1,1\n1,B,E2,2A\n1,C,E3,3S\n1,D,E4,4\n1,E,E5,9Z\n1,F,E6,\n")

	env := newEnv(t, dir)
	f, err := Buildings(context.Background(), env)
	if err != nil {
		t.Fatal(err)
	}
	codomain := map[string]bool{}
	for _, z := range env.Dict.SeismicCodomain() {
		codomain[z] = true
	}
	vals, _ := f.Column("zona_sismica")
	for i, v := range vals {
		if v.Valid && !codomain[v.S] {
			t.Errorf("row %d: zone %q outside codomain", i, v.S)
		}
	}
	if vals[4].Valid {
		t.Errorf("unmapped zone should be null, got %q", vals[4].S)
	}
}

func TestStudents(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteLatin1(t, dir, "ALUCORSOETASTA.csv",
		"ANNOSCOLASTICO,CODICESCUOLA,ORDINESCUOLA,ANNOCORSO,FASCIAETA,ALUNNI\n201819,A,PRIMARIA,1,6,20\n")
	testutil.WriteLatin1(t, dir, "ALUCORSOINDCLASTA.csv",
		"ANNOSCOLASTICO,CODICESCUOLA,ORDINESCUOLA,ANNOCORSOCLASSE,CLASSI,ALUNNI\n"+
			"201819,A,PRIMARIA,1,2,40\n201819,A,PRIMARIA,2,1,18\n")
	testutil.WriteLatin1(t, dir, "ALUITASTRACISTA.csv",
		"ANNOSCOLASTICO,CODICESCUOLA,ORDINESCUOLA,ANNOCORSO,ALUNNICITTADINANZAITALIANA,ALUNNICITTADINANZANONITALIANA,ALUNNICITTADINANZANONITALIANAUE,ALUNNICITTADINANZANONITALIANANONUE\n"+
			"201819,A,PRIMARIA,1,36,4,1,3\n201819,A,PRIMARIA,3,20,0,0,0\n")
	testutil.WriteLatin1(t, dir, "ALUITASTRACIPAR.csv",
		"ANNOSCOLASTICO,CODICESCUOLA,ORDINESCUOLA,ANNOCORSO,ALUNNICITTADINANZAITALIANA,ALUNNICITTADINANZANONITALIANA,ALUNNICITTADINANZANONITALIANAUE,ALUNNICITTADINANZANONITALIANANONUE\n"+
			"201819,A,PRIMARIA,1,10,0,0,0\n")
	// Present in real drops but never loaded.
	testutil.WriteLatin1(t, dir, "ALUSECGRADOINDSTA.csv", "X\n1\n")

	age, aggr, err := Students(context.Background(), newEnv(t, dir))
	if err != nil {
		t.Fatalf("Students: %v", err)
	}
	if age.Len() != 1 || !age.Has("ANNOCORSO") || !age.Has("tag") {
		t.Errorf("age table = %d rows, columns %v", age.Len(), age.Columns())
	}
	if aggr.Len() != 3 {
		t.Fatalf("aggregate rows = %d, want 3 (left merge keeps nationality rows)", aggr.Len())
	}
	for _, c := range []string{"codice_scuola", "anno_corso", "ITALIAN", "NON_ITALIAN", "EU", "NON_EU", "classi", "ALUNNI", "tag"} {
		if !aggr.Has(c) {
			t.Errorf("aggregate lacks %q: %v", c, aggr.Columns())
		}
	}
	// Order is the nationality order: PAR file first, then STA.
	if got, want := column(t, aggr, "ALUNNI"), []string{"<null>", "40", "<null>"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ALUNNI = %v, want %v", got, want)
	}
}

func TestDemographics(t *testing.T) {
	dir := t.TempDir()
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	rows := [][]any{
		{"Codice Regione", "Codice Comune formato alfanumerico", "Denominazione in italiano", "Denominazione regione", "Denominazione Città metropolitana", "Denominazione provincia", "Sigla automobilistica", "Codice Catastale del comune", "Popolazione legale 2011 (09/10/2011)"},
		{"01", "001001", "Agliè", "Piemonte", "-", "Torino", "TO", "A074", "2644"},
		{"12", "058091", "Roma", "Lazio", "Roma", "-", "RM", "H501", "2617175"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := wb.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	if err := wb.SaveAs(filepath.Join(dir, DefaultDemographicFile)); err != nil {
		t.Fatal(err)
	}
	wb.Close()

	f, err := Demographics(context.Background(), newEnv(t, dir))
	if err != nil {
		t.Fatalf("Demographics: %v", err)
	}
	want := []string{"codice_regione", "codice_comune", "comune", "regione", "provincia", "sigla", "popolazione"}
	if got := f.Columns(); !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
	if got := column(t, f, "provincia"); !reflect.DeepEqual(got, []string{"Torino", "Roma"}) {
		t.Errorf("provincia = %v, want metropolitan city backfilled", got)
	}
	if got := f.Get(0, "codice_comune").S; got != "001001" {
		t.Errorf("codice_comune = %q, want leading zeros", got)
	}
}

func TestForTables(t *testing.T) {
	if got := ForTables(nil); len(got) != len(All) {
		t.Errorf("empty selection = %d builders, want %d", len(got), len(All))
	}
	got := ForTables([]string{model.TableStudentAggr, model.TableRegistry})
	var names []string
	for _, b := range got {
		names = append(names, b.Name)
	}
	if want := []string{"registry", "students"}; !reflect.DeepEqual(names, want) {
		t.Errorf("builders = %v, want %v", names, want)
	}
}

func TestAll_CoversEveryTable(t *testing.T) {
	seen := map[string]bool{}
	for _, b := range All {
		for _, tbl := range b.Tables {
			if seen[tbl] {
				t.Errorf("table %s built twice", tbl)
			}
			seen[tbl] = true
		}
	}
	for _, tbl := range model.AllTables {
		if !seen[tbl] {
			t.Errorf("no builder for %s", tbl)
		}
	}
}

func TestBuilders_RequireDictionary(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteLatin1(t, dir, "EDIVINCOLISTA.csv",
		"ANNOSCOLASTICO,CODICESCUOLA,CODICEEDIFICIO,VINCOLIZONASISMICA\n1,A,E1,2B\n")
	env := NewEnv(dir, "", nil, Files{}, testutil.NewTestLogger(t))

	if _, err := Buildings(context.Background(), env); !errors.Is(err, ErrNoDictionary) {
		t.Errorf("Buildings err = %v, want ErrNoDictionary", err)
	}
	if _, err := Demographics(context.Background(), env); !errors.Is(err, ErrNoDictionary) {
		t.Errorf("Demographics err = %v, want ErrNoDictionary", err)
	}
}

func TestMarker_EveryCategoryResolves(t *testing.T) {
	for _, name := range []string{"registry", "building", "student-age-cohort", "student-class-total", "student-nationality", "evaluation"} {
		if _, err := marker(name); err != nil {
			t.Errorf("marker(%s): %v", name, err)
		}
	}
	if _, err := marker("pupils"); err == nil {
		t.Error("expected error for unknown category")
	}
}
