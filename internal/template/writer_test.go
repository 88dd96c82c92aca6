package template

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestWriteFileRoundTrip(t *testing.T) {
	export := Build(testParams(), testRecords())
	path := filepath.Join(t.TempDir(), "template.yaml")

	if err := WriteFile(path, export); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	var decoded Export
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("output is not valid yaml: %v", err)
	}
	if decoded.ZabbixExport.Version != "6.0" {
		t.Errorf("decoded version = %q", decoded.ZabbixExport.Version)
	}
	if len(decoded.ZabbixExport.Templates) != 1 {
		t.Fatalf("decoded %d templates", len(decoded.ZabbixExport.Templates))
	}
	if got, want := decoded.ZabbixExport.Templates[0].Name, "IF-MIB SNMP"; got != want {
		t.Errorf("decoded template name = %q, want %q", got, want)
	}
}

func TestWriteFilePreservesKeyOrder(t *testing.T) {
	export := Build(testParams(), testRecords())
	path := filepath.Join(t.TempDir(), "template.yaml")
	if err := WriteFile(path, export); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(raw)

	// Declared order, never alphabetical.
	order := []string{"zabbix_export", "version", "templates", "uuid", "template", "groups", "items", "discovery_rules", "valuemaps"}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, key+":")
		if idx < 0 {
			t.Fatalf("key %q missing from output", key)
		}
		if idx < last {
			t.Errorf("key %q appears before the key declared ahead of it", key)
		}
		last = idx
	}
}

func TestWriteFileDiscoveryExpressionOnOneLine(t *testing.T) {
	export := Build(testParams(), testRecords())
	path := filepath.Join(t.TempDir(), "template.yaml")
	if err := WriteFile(path, export); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}

	expr := export.ZabbixExport.Templates[0].DiscoveryRules[0].SNMPOID
	if !strings.Contains(string(raw), expr) {
		t.Error("discovery expression was split or mangled in the output")
	}
}

func TestWriteFileOmitsEmptyValueMaps(t *testing.T) {
	export := Build(testParams(), nil)
	path := filepath.Join(t.TempDir(), "template.yaml")
	if err := WriteFile(path, export); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if strings.Contains(string(raw), "valuemaps") {
		t.Error("empty valuemaps section should be omitted")
	}
}

func TestWriteFileBadPath(t *testing.T) {
	export := Build(testParams(), nil)
	err := WriteFile(filepath.Join(t.TempDir(), "missing", "nested", "out.yaml"), export)
	if err == nil {
		t.Fatal("expected error writing to nonexistent directory")
	}
}
