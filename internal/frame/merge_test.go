package frame

import (
	"reflect"
	"testing"
)

func TestMerge_Inner(t *testing.T) {
	left := mustFrame(t, []string{"k", "a"}, []string{"1", "a1"}, []string{"2", "a2"}, []string{"3", "a3"})
	right := mustFrame(t, []string{"k", "b"}, []string{"3", "b3"}, []string{"1", "b1"}, []string{"9", "b9"})

	out, err := Merge(left, right, MergeOptions{How: Inner, On: []string{"k"}})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out.Columns(), []string{"k", "a", "b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	if got, want := cells(t, out, "k"), []string{"1", "3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("k = %v, want %v (left order)", got, want)
	}
	if got, want := cells(t, out, "b"), []string{"b1", "b3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("b = %v, want %v", got, want)
	}
}

func TestMerge_LeftKeepsUnmatched(t *testing.T) {
	left := mustFrame(t, []string{"k", "a"}, []string{"1", "a1"}, []string{"2", "a2"})
	right := mustFrame(t, []string{"k", "b"}, []string{"1", "b1"})

	out, err := Merge(left, right, MergeOptions{How: Left, On: []string{"k"}})
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 2 {
		t.Fatalf("rows = %d, want 2", out.Len())
	}
	if got, want := cells(t, out, "b"), []string{"b1", "<null>"}; !reflect.DeepEqual(got, want) {
		t.Errorf("b = %v, want %v", got, want)
	}
}

func TestMerge_OuterAppendsRightOnly(t *testing.T) {
	left := mustFrame(t, []string{"k", "a"}, []string{"1", "a1"})
	right := mustFrame(t, []string{"k", "b"}, []string{"2", "b2"})

	out, err := Merge(left, right, MergeOptions{How: Outer, On: []string{"k"}})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cells(t, out, "k"), []string{"1", "2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("k = %v, want %v", got, want)
	}
	if got, want := cells(t, out, "a"), []string{"a1", "<null>"}; !reflect.DeepEqual(got, want) {
		t.Errorf("a = %v, want %v", got, want)
	}
	if got, want := cells(t, out, "b"), []string{"<null>", "b2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("b = %v, want %v", got, want)
	}
}

func TestMerge_OuterSorted(t *testing.T) {
	left := mustFrame(t, []string{"k"}, []string{"10"}, []string{"2"})
	right := mustFrame(t, []string{"k"}, []string{"1"})

	out, err := Merge(left, right, MergeOptions{How: Outer, On: []string{"k"}, Sort: true})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cells(t, out, "k"), []string{"1", "2", "10"}; !reflect.DeepEqual(got, want) {
		t.Errorf("k = %v, want %v", got, want)
	}
}

func TestMerge_NullKeysNeverMatch(t *testing.T) {
	left := mustFrame(t, []string{"k", "a"}, []string{"", "a0"})
	right := mustFrame(t, []string{"k", "b"}, []string{"", "b0"})

	inner, err := Merge(left, right, MergeOptions{How: Inner, On: []string{"k"}})
	if err != nil {
		t.Fatal(err)
	}
	if inner.Len() != 0 {
		t.Errorf("inner rows = %d, want 0", inner.Len())
	}
	outer, err := Merge(left, right, MergeOptions{How: Outer, On: []string{"k"}})
	if err != nil {
		t.Fatal(err)
	}
	if outer.Len() != 2 {
		t.Errorf("outer rows = %d, want 2", outer.Len())
	}
}

func TestMerge_Suffixes(t *testing.T) {
	left := mustFrame(t, []string{"k", "ALUNNI"}, []string{"1", "20"})
	right := mustFrame(t, []string{"k", "ALUNNI"}, []string{"1", "21"})

	out, err := Merge(left, right, MergeOptions{How: Inner, On: []string{"k"}})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out.Columns(), []string{"k", "ALUNNI_x", "ALUNNI_y"}; !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}

	out, err = Merge(left, right, MergeOptions{How: Left, On: []string{"k"}, Suffixes: [2]string{"", "_classe"}})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out.Columns(), []string{"k", "ALUNNI", "ALUNNI_classe"}; !reflect.DeepEqual(got, want) {
		t.Errorf("columns = %v, want %v", got, want)
	}
}

func TestMerge_DuplicateMatchesExpand(t *testing.T) {
	left := mustFrame(t, []string{"k", "a"}, []string{"1", "a1"})
	right := mustFrame(t, []string{"k", "b"}, []string{"1", "b1"}, []string{"1", "b2"})

	out, err := Merge(left, right, MergeOptions{How: Inner, On: []string{"k"}})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := cells(t, out, "b"), []string{"b1", "b2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("b = %v, want %v", got, want)
	}
}

func TestMerge_Errors(t *testing.T) {
	left := mustFrame(t, []string{"k"})
	right := mustFrame(t, []string{"j"})
	if _, err := Merge(left, right, MergeOptions{How: Inner, On: []string{"k"}}); err == nil {
		t.Error("expected error for key missing on right")
	}
	if _, err := Merge(left, left, MergeOptions{How: "cross", On: []string{"k"}}); err == nil {
		t.Error("expected error for unsupported join")
	}
	if _, err := Merge(left, left, MergeOptions{How: Inner}); err == nil {
		t.Error("expected error for empty key set")
	}
}

func TestGroupBySum(t *testing.T) {
	f := mustFrame(t, []string{"prov", "tipo", "M", "F"},
		[]string{"RM", "annuale", "1", "2"},
		[]string{"MI", "annuale", "5", ""},
		[]string{"RM", "temporanea", "3", "4"},
		[]string{"", "annuale", "100", "100"},
	)
	out, err := GroupBySum(f, []string{"prov"}, []string{"M", "F"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out.Columns(), []string{"prov", "M", "F"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	if got, want := cells(t, out, "prov"), []string{"MI", "RM"}; !reflect.DeepEqual(got, want) {
		t.Errorf("prov = %v, want %v", got, want)
	}
	if got, want := cells(t, out, "M"), []string{"5", "4"}; !reflect.DeepEqual(got, want) {
		t.Errorf("M = %v, want %v", got, want)
	}
	if got, want := cells(t, out, "F"), []string{"0", "6"}; !reflect.DeepEqual(got, want) {
		t.Errorf("F = %v, want %v", got, want)
	}
}

func TestGroupBySum_NonNumeric(t *testing.T) {
	f := mustFrame(t, []string{"k", "v"}, []string{"a", "abc"})
	if _, err := GroupBySum(f, []string{"k"}, []string{"v"}); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
}
