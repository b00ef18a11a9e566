package main

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/use-agent/scrapeai/config"
	"github.com/use-agent/scrapeai/models"
	"github.com/use-agent/scrapeai/output"
	"github.com/use-agent/scrapeai/pipeline"
	"github.com/use-agent/scrapeai/schema"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "http://example.com"},
		{"  example.com/path  ", "http://example.com/path"},
		{"https://example.com", "https://example.com"},
		{"HTTP://Example.com", "HTTP://Example.com"},
		{"file:///tmp/page.html", "file:///tmp/page.html"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeURL(tt.in); got != tt.want {
			t.Errorf("normalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders([]string{"Accept-Language: en-US", "Cookie: a=b: c", "broken", ": empty-key"})
	want := map[string]string{"Accept-Language": "en-US", "Cookie": "a=b: c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseHeaders() = %v, want %v", got, want)
	}
}

func TestModelsCommand(t *testing.T) {
	cmd := newRootCmd(config.FromEnv())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"models"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"gpt-4o-mini", "0.15", "0.60", "gpt-4o-2024-08-06", "2.50", "10.00"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRootRequiresAPIKey(t *testing.T) {
	cfg := config.FromEnv()
	cfg.LLM.APIKey = ""

	cmd := newRootCmd(cfg)
	cmd.SetArgs([]string{"example.com"})

	err := cmd.Execute()
	var se *models.ScrapeError
	if !errors.As(err, &se) || se.Code != models.ErrCodeInvalidInput {
		t.Fatalf("error = %v, want INVALID_INPUT", err)
	}
}

func TestHeaderFlagKeepsCommas(t *testing.T) {
	cmd := newRootCmd(config.FromEnv())
	if err := cmd.ParseFlags([]string{"-H", "Accept: text/html,application/xhtml+xml", "-H", "X-Trace: 1"}); err != nil {
		t.Fatal(err)
	}
	raw, err := cmd.Flags().GetStringArray("header")
	if err != nil {
		t.Fatal(err)
	}
	got := parseHeaders(raw)
	want := map[string]string{"Accept": "text/html,application/xhtml+xml", "X-Trace": "1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("headers = %v, want %v", got, want)
	}
}

func TestFieldFlagKeepsCommas(t *testing.T) {
	cmd := newRootCmd(config.FromEnv())
	if err := cmd.ParseFlags([]string{"-F", "price, in USD", "-F", "name"}); err != nil {
		t.Fatal(err)
	}
	got, err := cmd.Flags().GetStringArray("field")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"price, in USD", "name"}; !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestFieldFlagDefaults(t *testing.T) {
	cmd := newRootCmd(config.FromEnv())
	got, err := cmd.Flags().GetStringArray("field")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"image", "price"}) {
		t.Errorf("default fields = %v", got)
	}
}

func TestPrintResult(t *testing.T) {
	res := &pipeline.Result{
		Container: schema.NewContainer([]string{"name", "price"}, []schema.Record{{"name": "Acme Kettle", "price": "9.99"}}),
		Table:     &output.Table{Columns: []string{"name", "price"}, Rows: [][]string{{"Acme Kettle", "9.99"}}},
		Cost:      models.CostReport{InputTokens: 1000, OutputTokens: 20, TotalCost: 0.000162},
		Files:     models.Artifacts{JSON: "output/sorted_data_20240101_120000.json"},
	}

	var out bytes.Buffer
	if err := printResult(&out, res); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"name", "Acme Kettle", "Total cost:    $0.0002", "sorted_data_20240101_120000.json"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
	if strings.Contains(out.String(), "XLSX:") {
		t.Error("printed an XLSX path that was not written")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate() = %q", got)
	}
}
