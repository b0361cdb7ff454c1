package merge

import (
	"testing"

	"gffdb/feature"
	"gffdb/gfferrors"
	"gffdb/idresolve"
)

func mkFeature(seqid string, start, end int64, attrs map[string]string) *feature.Feature {
	f := feature.New()
	f.Seqid = seqid
	f.Source = "src"
	f.Featuretype = "CDS"
	f.Start = &start
	f.End = &end
	f.Strand = "+"
	f.Frame = "."
	for k, v := range attrs {
		f.Attributes.Set(k, []string{v})
	}
	return f
}

func TestErrorStrategy(t *testing.T) {
	s := NewSet()
	autoinc := idresolve.NewAutoincrement()
	a := mkFeature("chr1", 1, 10, nil)
	b := mkFeature("chr1", 1, 10, nil)

	if _, err := Resolve(s, "dup", a, StrategyError, 1, autoinc); err != nil {
		t.Fatalf("first insert should not error: %v", err)
	}
	_, err := Resolve(s, "dup", b, StrategyError, 2, autoinc)
	if err == nil {
		t.Fatal("expected DuplicateIDError")
	}
	if _, ok := err.(*gfferrors.DuplicateIDError); !ok {
		t.Fatalf("expected DuplicateIDError, got %T", err)
	}
}

func TestMergeConflict(t *testing.T) {
	s := NewSet()
	autoinc := idresolve.NewAutoincrement()
	a := mkFeature("chr1", 100, 200, nil)
	b := mkFeature("chr1", 150, 250, nil) // different start

	if _, err := Resolve(s, "x", a, StrategyMerge, 1, autoinc); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	_, err := Resolve(s, "x", b, StrategyMerge, 2, autoinc)
	if err == nil {
		t.Fatal("expected MergeConflictError")
	}
	if mc, ok := err.(*gfferrors.MergeConflictError); !ok || mc.Line != 2 {
		t.Fatalf("expected MergeConflictError on line 2, got %v", err)
	}
}

func TestMergeIdempotence(t *testing.T) {
	// Property 3: merging a feature with itself is a no-op; merging
	// the merge result with b again equals merging once.
	s := NewSet()
	autoinc := idresolve.NewAutoincrement()
	a := mkFeature("chr1", 100, 200, map[string]string{"ID": "x", "Name": "n1"})
	b := mkFeature("chr1", 100, 200, map[string]string{"ID": "x", "Name": "n2"})

	if _, err := Resolve(s, "x", a, StrategyMerge, 1, autoinc); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	r1, err := Resolve(s, "x", b, StrategyMerge, 2, autoinc)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	once := r1.Feature.Attributes.Get("Name")

	r2, err := Resolve(s, "x", b.Clone(), StrategyMerge, 3, autoinc)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	twice := r2.Feature.Attributes.Get("Name")

	if len(once) != len(twice) {
		t.Fatalf("merge is not idempotent: %v vs %v", once, twice)
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("merge is not idempotent at index %d: %v vs %v", i, once, twice)
		}
	}
}

func TestCreateUnique(t *testing.T) {
	s := NewSet()
	autoinc := idresolve.NewAutoincrement()
	base := "CDS:NC_000083.5:LOC100040603"

	var lastKey string
	for i := 0; i < 5; i++ {
		f := mkFeature("chr1", int64(i*10+1), int64(i*10+9), nil)
		r, err := Resolve(s, base, f, StrategyCreateUnique, i+1, autoinc)
		if err != nil {
			t.Fatalf("unexpected: %v", err)
		}
		lastKey = r.Key
	}
	if lastKey != base+"_4" {
		t.Errorf("expected 5th duplicate to be %s_4, got %s", base, lastKey)
	}
}

func TestReplaceStrategy(t *testing.T) {
	s := NewSet()
	autoinc := idresolve.NewAutoincrement()
	a := mkFeature("chr1", 1, 10, map[string]string{"ID": "x"})
	b := mkFeature("chr1", 5, 20, map[string]string{"ID": "x"})

	if _, err := Resolve(s, "x", a, StrategyReplace, 1, autoinc); err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	r, err := Resolve(s, "x", b, StrategyReplace, 2, autoinc)
	if err != nil {
		t.Fatalf("unexpected: %v", err)
	}
	if *r.Feature.Start != 5 {
		t.Errorf("expected replace to keep the new feature, got start=%v", *r.Feature.Start)
	}
}
