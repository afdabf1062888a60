package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"travel-records-service/internal/domain/entity"
)

const cliDataFile = "/records/records.json"

func run(t *testing.T, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(fs)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--data-file", cliDataFile, "--format", "json"}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, fs afero.Fs, args ...string) string {
	t.Helper()
	out, err := run(t, fs, args...)
	if err != nil {
		t.Fatalf("recordctl %v: %v\n%s", args, err, out)
	}
	return out
}

func TestCLI_CreateListDelete(t *testing.T) {
	fs := afero.NewMemMapFs()
	mustRun(t, fs, "create", "client", `{"Name":"John","Phone Number":"1","City":"Boston","Country":"USA"}`)
	mustRun(t, fs, "create", "airline", `{"Company Name":"Delta"}`)
	mustRun(t, fs, "create", "flight", `{"Client_ID":1,"Airline_ID":2,"Date":"2024-12-15","Start City":"Boston","End City":"Denver"}`)

	var flights []map[string]any
	if err := json.Unmarshal([]byte(mustRun(t, fs, "list", "flight")), &flights); err != nil {
		t.Fatalf("list output is not JSON: %v", err)
	}
	if len(flights) != 1 || flights[0]["Start City"] != "Boston" {
		t.Errorf("flights = %v", flights)
	}

	out := mustRun(t, fs, "delete", "client", "1")
	if !strings.Contains(out, "Deleted client 1") {
		t.Errorf("delete output = %q", out)
	}
	if err := json.Unmarshal([]byte(mustRun(t, fs, "list", "flight")), &flights); err != nil || len(flights) != 0 {
		t.Errorf("flights after delete = %v, %v", flights, err)
	}

	if _, err := run(t, fs, "get", "client", "1"); !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("get deleted client error = %v, want ErrNotFound", err)
	}
}

func TestCLI_SearchStatsNextID(t *testing.T) {
	fs := afero.NewMemMapFs()
	mustRun(t, fs, "create", "client", `{"Name":"John","Phone Number":"1","City":"New York","Country":"USA"}`)
	mustRun(t, fs, "create", "client", `{"Name":"Jane","Phone Number":"2","City":"new york city","Country":"USA"}`)

	var results []map[string]any
	if err := json.Unmarshal([]byte(mustRun(t, fs, "search", "client", "NEW YORK", "--field", "City")), &results); err != nil {
		t.Fatalf("search output is not JSON: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("search returned %d results, want 2", len(results))
	}

	var stats map[string]any
	if err := json.Unmarshal([]byte(mustRun(t, fs, "stats")), &stats); err != nil {
		t.Fatalf("stats output is not JSON: %v", err)
	}
	if stats["clients"] != 2.0 {
		t.Errorf("stats clients = %v, want 2", stats["clients"])
	}

	if out := strings.TrimSpace(mustRun(t, fs, "next-id")); out != "3" {
		t.Errorf("next-id = %q, want 3", out)
	}
	if out := strings.TrimSpace(mustRun(t, fs, "next-id", "airline")); out != "1" {
		t.Errorf("next-id airline = %q, want 1", out)
	}
}

func TestCLI_ExportClearImport(t *testing.T) {
	fs := afero.NewMemMapFs()
	mustRun(t, fs, "create", "airline", `{"Company Name":"Delta"}`)

	mustRun(t, fs, "export", "/backup/records.json")
	if _, err := run(t, fs, "clear"); err == nil {
		t.Error("clear without --yes succeeded")
	}
	mustRun(t, fs, "clear", "--yes")

	var res map[string]any
	if err := json.Unmarshal([]byte(mustRun(t, fs, "import", "/backup/records.json")), &res); err != nil {
		t.Fatalf("import output is not JSON: %v", err)
	}
	if res["imported"] != 1.0 {
		t.Errorf("import result = %v", res)
	}
}

func TestCLI_RejectsUnknownType(t *testing.T) {
	if _, err := run(t, afero.NewMemMapFs(), "list", "boat"); !errors.Is(err, entity.ErrUnknownType) {
		t.Errorf("list boat error = %v, want ErrUnknownType", err)
	}
}
