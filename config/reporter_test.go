package config

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestReportClose_NilReport(t *testing.T) {
	var r *Report
	if err := r.Close(); err != nil {
		t.Errorf("Close on nil report should not error, got: %v", err)
	}
}

func TestReportClose_NilFile(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	if err := r.Close(); err != nil {
		t.Errorf("Close with nil file should not error, got: %v", err)
	}
}

func TestReport_StoreOnNilIsNoop(t *testing.T) {
	var r *Report
	r.Store("name", "/some/path")
	r.StoreData("data", []byte("payload"))
}

func TestReport_FinalizeArchive(t *testing.T) {
	reportFile, err := os.CreateTemp("", "test-report-*.zip")
	if err != nil {
		t.Fatalf("failed to create temp report file: %v", err)
	}
	defer os.Remove(reportFile.Name())

	r := &Report{
		entries: make(map[string]entry),
		file:    reportFile,
	}

	storedFile := filepath.Join(t.TempDir(), "result.html")
	if err := os.WriteFile(storedFile, []byte("<html></html>"), 0644); err != nil {
		t.Fatalf("failed to write stored file: %v", err)
	}

	r.Store("result/result.html", storedFile)
	r.StoreData("diagnostics.txt", []byte("a diagnostic line\n"))
	// absent files are silently skipped
	r.Store("missing", filepath.Join(t.TempDir(), "never-created"))

	if err := r.Close(); err != nil {
		t.Fatalf("Report.Close() error: %v", err)
	}

	arc, err := zip.OpenReader(reportFile.Name())
	if err != nil {
		t.Fatalf("unable to open produced archive: %v", err)
	}
	defer arc.Close()

	found := make(map[string]string)
	for _, f := range arc.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("unable to open archive member %s: %v", f.Name, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		found[f.Name] = string(data)
	}

	if _, ok := found["MANIFEST"]; !ok {
		t.Error("archive has no MANIFEST")
	}
	if found["result/result.html"] != "<html></html>" {
		t.Errorf("stored file content = %q", found["result/result.html"])
	}
	if found["diagnostics.txt"] != "a diagnostic line\n" {
		t.Errorf("stored data content = %q", found["diagnostics.txt"])
	}
	if _, ok := found["missing"]; ok {
		t.Error("absent stored file must be skipped, not archived")
	}
}

func TestReport_StoreConflictPanics(t *testing.T) {
	r := &Report{entries: make(map[string]entry)}
	r.Store("name", "/path/one")

	defer func() {
		if recover() == nil {
			t.Error("expected panic on conflicting Store for the same name")
		}
	}()
	r.Store("name", "/path/two")
}
