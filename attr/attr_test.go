package attr

import (
	"sort"
	"testing"

	"gffdb/dialect"
)

func TestRoundTripGFF3(t *testing.T) {
	col := "ID=FBgn0031208;Name=FBgn0031208;Alias=CG11023"
	d := dialect.GFF3()
	a, err := Parse(col, d, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Render(a, d)
	if got != col {
		t.Errorf("round-trip mismatch:\ngot  %q\nwant %q", got, col)
	}
}

func TestRoundTripGTF(t *testing.T) {
	col := `gene_id "B0019.1"; transcript_id "B0019.1";`
	d := dialect.GTF()
	a, err := Parse(col, d, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := Render(a, d)
	if got != col {
		t.Errorf("round-trip mismatch:\ngot  %q\nwant %q", got, col)
	}
}

func TestPercentDecodeOnParse(t *testing.T) {
	col := "Note=growth%20hormone%201;Alias=GH1"
	a, err := Parse(col, dialect.GFF3(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	note, _ := a.First("Note")
	if note != "growth hormone 1" {
		t.Errorf("expected decoded note, got %q", note)
	}
}

func TestEmptyValueToken(t *testing.T) {
	// spec.md §8 S5: glimmer's "Complete" token has no "=" and should
	// map to an empty value list, not an error.
	col := "ID=GL0000007;Complete"
	a, err := Parse(col, dialect.GFF3(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Has("Complete") {
		t.Fatal("expected Complete key to be present")
	}
	if vals := a.Get("Complete"); len(vals) != 0 {
		t.Errorf("expected empty value list, got %v", vals)
	}
}

func TestMultiValueSymmetry(t *testing.T) {
	// Property 2: parsing a permutation of the same value set yields
	// the same multiset of values.
	perms := []string{
		"Parent=FBtr0300689,FBtr0300690",
		"Parent=FBtr0300690,FBtr0300689",
	}
	var sets [][]string
	for _, col := range perms {
		a, err := Parse(col, dialect.GFF3(), 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		vals := append([]string(nil), a.Get("Parent")...)
		sort.Strings(vals)
		sets = append(sets, vals)
	}
	if len(sets[0]) != len(sets[1]) {
		t.Fatalf("differing value counts: %v vs %v", sets[0], sets[1])
	}
	for i := range sets[0] {
		if sets[0][i] != sets[1][i] {
			t.Errorf("multiset mismatch: %v vs %v", sets[0], sets[1])
		}
	}
}

func TestTrailingCommaPreservedAsEmptyElement(t *testing.T) {
	// spec.md §8 S2: cds4["Parent"] == ["XM_001475631.1", ""]
	a, err := Parse("Parent=XM_001475631.1,", dialect.GFF3(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := a.Get("Parent")
	want := []string{"XM_001475631.1", ""}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRepeatedKeysGTF(t *testing.T) {
	d := dialect.GTF()
	d.RepeatedKeys = true
	a, err := Parse(`tag "a"; tag "b";`, d, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := a.Get("tag")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected repeated key to accumulate, got %v", got)
	}
}
