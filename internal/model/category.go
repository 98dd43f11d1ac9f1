package model

// Category is a class of source extract, recognized by a filename substring.
type Category struct {
	Name      string // e.g. "registry"
	Substring string // filename marker, e.g. "SCUANA"
	Table     string // output table the category feeds, e.g. "anagrafica"
}

// Output table names.
const (
	TableRegistry     = "anagrafica"
	TableStaff        = "docenti"
	TableBuildings    = "edilizia"
	TableStudentAge   = "studenti_eta"
	TableStudentAggr  = "studenti_aggr"
	TableDemographics = "demografica"
	TableEvaluation   = "valutazione"
)

// AllTables lists the output tables in write order.
var AllTables = []string{
	TableRegistry,
	TableStaff,
	TableBuildings,
	TableStudentAge,
	TableStudentAggr,
	TableDemographics,
	TableEvaluation,
}

// AllCategories lists the delimited-text categories that are loaded.
var AllCategories = []Category{
	{Name: "registry", Substring: "SCUANA", Table: TableRegistry},
	{Name: "staff-titular", Substring: "DOCTIT", Table: TableStaff},
	{Name: "staff-substitute", Substring: "DOCSUP", Table: TableStaff},
	{Name: "building", Substring: "EDI", Table: TableBuildings},
	{Name: "student-age-cohort", Substring: "CORSOETA", Table: TableStudentAge},
	{Name: "student-class-total", Substring: "CORSOINDCLA", Table: TableStudentAggr},
	{Name: "student-nationality", Substring: "ITASTRACI", Table: TableStudentAggr},
	{Name: "evaluation", Substring: "VALUTAZIONE", Table: TableEvaluation},
}

// SkippedSubstrings are categories shipped alongside the student extracts
// that no table uses.
var SkippedSubstrings = []string{"SECGRADOIND", "TEMPOSCUOLA"}

// CategoryByName returns the Category for the given name, or ok=false.
func CategoryByName(name string) (Category, bool) {
	for _, c := range AllCategories {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryBySubstring returns the Category with the given filename marker.
func CategoryBySubstring(sub string) (Category, bool) {
	for _, c := range AllCategories {
		if c.Substring == sub {
			return c, true
		}
	}
	return Category{}, false
}

// IsTable reports whether name is a known output table.
func IsTable(name string) bool {
	for _, t := range AllTables {
		if t == name {
			return true
		}
	}
	return false
}
