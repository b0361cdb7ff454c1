package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const miniGFF3 = `##gff-version 3
chr2L	FlyBase	gene	7529	9484	.	+	.	ID=FBgn0031208;Name=CG11023
chr2L	FlyBase	mRNA	7529	9484	.	+	.	ID=FBtr0300689;Parent=FBgn0031208
`

func TestCreateDBThenStats(t *testing.T) {
	dir := t.TempDir()
	gffPath := filepath.Join(dir, "mini.gff3")
	if err := os.WriteFile(gffPath, []byte(miniGFF3), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	dbPath := filepath.Join(dir, "mini.db")

	createCmd := newCreateDBCommand()
	var out bytes.Buffer
	createCmd.SetOut(&out)
	createCmd.SetErr(&out)
	createCmd.SetArgs([]string{"--db", dbPath, gffPath})
	if err := createCmd.Execute(); err != nil {
		t.Fatalf("create-db: %v", err)
	}
	if !strings.Contains(out.String(), "created") {
		t.Errorf("expected confirmation message, got %q", out.String())
	}

	statsCmd := newStatsCommand()
	out.Reset()
	statsCmd.SetOut(&out)
	statsCmd.SetErr(&out)
	statsCmd.SetArgs([]string{dbPath})
	if err := statsCmd.Execute(); err != nil {
		t.Fatalf("stats: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "features:  2") {
		t.Errorf("expected 2 features, got: %s", got)
	}
	if !strings.Contains(got, "relations: 1") {
		t.Errorf("expected 1 relation, got: %s", got)
	}
}

func TestCreateDBRejectsUnknownMergeStrategy(t *testing.T) {
	dir := t.TempDir()
	gffPath := filepath.Join(dir, "mini.gff3")
	if err := os.WriteFile(gffPath, []byte(miniGFF3), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cmd := newCreateDBCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--db", filepath.Join(dir, "mini.db"), "--merge-strategy", "bogus", gffPath})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an unknown merge strategy")
	}
}

func TestCreateDBRequiresDBFlag(t *testing.T) {
	dir := t.TempDir()
	gffPath := filepath.Join(dir, "mini.gff3")
	if err := os.WriteFile(gffPath, []byte(miniGFF3), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cmd := newCreateDBCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{gffPath})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error when --db is missing")
	}
}
