package main

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mibkit/mib2zabbix/internal/template"
)

// fakeTranslateScript installs a shell script standing in for snmptranslate
// and points SNMPTRANSLATE at it.
func fakeTranslateScript(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "snmptranslate")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write fake snmptranslate: %v", err)
	}
	t.Setenv("SNMPTRANSLATE", path)
}

func testOptions(t *testing.T) options {
	return options{
		mibFile: "FOO-MIB.txt",
		module:  "FOO-MIB",
		output:  filepath.Join(t.TempDir(), "template.yaml"),
		params: template.Params{
			Module:         "FOO-MIB",
			Group:          "Templates",
			CheckDelay:     "1h",
			DiscoveryDelay: "1h",
			History:        "30d",
			Trends:         "0",
		},
	}
}

const workingScript = `case "$1" in
  -To) exit 0 ;;
  -Tl) printf 'FOO-MIB::fooUptime\nFOO-MIB::fooStatus\n' ;;
  -On)
    case "$4" in
      FOO-MIB::fooUptime) echo '.1.3.6.1.4.1.9999.2.3' ;;
      FOO-MIB::fooStatus) echo '.1.3.6.1.4.1.9999.2.4' ;;
      *) exit 1 ;;
    esac ;;
  -Tz) echo "$4" ;;
  -Td)
    case "$4" in
      FOO-MIB::fooUptime) printf 'SYNTAX\tTimeTicks\nDESCRIPTION\t"Time since boot."\n' ;;
      FOO-MIB::fooStatus) printf 'SYNTAX\tINTEGER { up(1), down(2) }\nDESCRIPTION\t"Unit status."\n' ;;
    esac ;;
esac
`

func TestRunEndToEnd(t *testing.T) {
	fakeTranslateScript(t, workingScript)
	opts := testOptions(t)

	if err := run(context.Background(), opts); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	raw, err := os.ReadFile(opts.output)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	var export template.Export
	if err := yaml.Unmarshal(raw, &export); err != nil {
		t.Fatalf("output is not valid yaml: %v", err)
	}

	tmpl := export.ZabbixExport.Templates[0]
	if tmpl.Name != "FOO-MIB SNMP" {
		t.Errorf("template name = %q", tmpl.Name)
	}
	if len(tmpl.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(tmpl.Items))
	}
	if tmpl.Items[0].Units != "s" {
		t.Errorf("fooUptime units = %q, want s (TimeTicks default)", tmpl.Items[0].Units)
	}
	if len(export.ZabbixExport.ValueMaps) != 1 {
		t.Fatalf("got %d valuemaps, want 1", len(export.ZabbixExport.ValueMaps))
	}
	if tmpl.Items[1].ValueMap == nil || tmpl.Items[1].ValueMap.Name != export.ZabbixExport.ValueMaps[0].Name {
		t.Error("fooStatus valuemap reference does not resolve")
	}
}

func TestRunDeterministicOutput(t *testing.T) {
	fakeTranslateScript(t, workingScript)
	opts := testOptions(t)

	if err := run(context.Background(), opts); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first, err := os.ReadFile(opts.output)
	if err != nil {
		t.Fatalf("read first output: %v", err)
	}

	if err := run(context.Background(), opts); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	second, err := os.ReadFile(opts.output)
	if err != nil {
		t.Fatalf("read second output: %v", err)
	}

	if string(first) != string(second) {
		t.Error("identical runs produced different bytes")
	}
}

func TestRunModuleLoadFailureStopsEarly(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "listed")
	fakeTranslateScript(t,
		"case \"$1\" in\n"+
			"  -To) echo 'Cannot load FOO-MIB' >&2; exit 2 ;;\n"+
			"  -Tl) touch "+marker+" ;;\n"+
			"esac\n")
	opts := testOptions(t)

	if err := run(context.Background(), opts); err == nil {
		t.Fatal("expected module-load failure")
	}
	if _, err := os.Stat(marker); err == nil {
		t.Error("symbol enumeration ran after a failed module load")
	}
	if _, err := os.Stat(opts.output); err == nil {
		t.Error("output file written despite fatal load error")
	}
}

func TestRunNoSymbolsIsFatal(t *testing.T) {
	fakeTranslateScript(t, "exit 0\n")
	opts := testOptions(t)

	err := run(context.Background(), opts)
	if err == nil {
		t.Fatal("expected error for empty symbol enumeration")
	}
	if !strings.Contains(err.Error(), "no symbols") {
		t.Errorf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(opts.output); statErr == nil {
		t.Error("output file written despite empty enumeration")
	}
}

func TestRunNoClassifiedSymbolsIsFatal(t *testing.T) {
	// Symbols enumerate but every OID lookup fails.
	fakeTranslateScript(t,
		"case \"$1\" in\n"+
			"  -To) exit 0 ;;\n"+
			"  -Tl) echo 'FOO-MIB::broken' ;;\n"+
			"  *) exit 1 ;;\n"+
			"esac\n")
	opts := testOptions(t)

	err := run(context.Background(), opts)
	if err == nil {
		t.Fatal("expected error when nothing classifies")
	}
	if !strings.Contains(err.Error(), "classified") {
		t.Errorf("unexpected error: %v", err)
	}
}
