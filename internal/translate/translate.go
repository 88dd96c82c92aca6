package translate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Timeouts mirror how long each snmptranslate mode is allowed to run.
// The module dump and symbol listing walk the whole tree and get more
// headroom than the per-symbol lookups.
const (
	loadTimeout      = 15 * time.Second
	enumerateTimeout = 30 * time.Second
	symbolTimeout    = 10 * time.Second
)

var (
	// ErrTranslatorNotFound means the snmptranslate binary is missing from
	// PATH. Distinct from a MIB-content failure so callers can tell the
	// user to install net-snmp rather than fix their MIB.
	ErrTranslatorNotFound = errors.New("snmptranslate binary not found")

	// ErrModuleLoad means snmptranslate ran but could not load the module.
	ErrModuleLoad = errors.New("MIB module failed to load")
)

// Translator resolves MIB symbols through an external translation backend.
// Implementations could swap the subprocess for a native parser without
// touching the classifier or the template builder.
type Translator interface {
	// LoadModule verifies the module parses and loads.
	LoadModule(ctx context.Context) error
	// Symbols returns every symbol name the module exports.
	Symbols(ctx context.Context) ([]string, error)
	// OID returns the numeric dotted OID for a symbol.
	OID(ctx context.Context, symbol string) (string, error)
	// FullName returns the fully qualified display name for a symbol.
	FullName(ctx context.Context, symbol string) (string, error)
	// Describe returns the detailed description block for a symbol,
	// including its SYNTAX and DESCRIPTION clauses.
	Describe(ctx context.Context, symbol string) (string, error)
}

// SnmpTranslate implements Translator by spawning net-snmp's snmptranslate
// once per lookup. Each invocation is an independent short-lived process
// bounded by a timeout.
type SnmpTranslate struct {
	Binary  string
	MIBFile string
	Module  string

	// TimeoutScale multiplies the built-in timeouts, for slow translator
	// installs or very large MIBs. Zero means 1.0.
	TimeoutScale float64
}

// NewSnmpTranslate builds an adapter for one MIB file and module. The
// SNMPTRANSLATE environment variable overrides the binary path.
func NewSnmpTranslate(mibFile, module string) *SnmpTranslate {
	binary := os.Getenv("SNMPTRANSLATE")
	if binary == "" {
		binary = "snmptranslate"
	}
	return &SnmpTranslate{
		Binary:  binary,
		MIBFile: mibFile,
		Module:  module,
	}
}

func (t *SnmpTranslate) LoadModule(ctx context.Context) error {
	_, stderr, err := t.run(ctx, loadTimeout, "-To", "-m", t.MIBFile, t.Module)
	if err != nil {
		if errors.Is(err, ErrTranslatorNotFound) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrModuleLoad, t.Module, firstLine(stderr))
	}
	return nil
}

func (t *SnmpTranslate) Symbols(ctx context.Context) ([]string, error) {
	stdout, stderr, err := t.run(ctx, enumerateTimeout, "-Tl", "-m", t.MIBFile, t.Module)
	if err != nil {
		if errors.Is(err, ErrTranslatorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("list symbols for %s: %v: %s", t.Module, err, firstLine(stderr))
	}
	return splitSymbols(stdout), nil
}

func (t *SnmpTranslate) OID(ctx context.Context, symbol string) (string, error) {
	stdout, _, err := t.run(ctx, symbolTimeout, "-On", "-m", t.MIBFile, symbol)
	if err != nil {
		return "", fmt.Errorf("resolve OID for %s: %w", symbol, err)
	}
	return strings.TrimSpace(stdout), nil
}

func (t *SnmpTranslate) FullName(ctx context.Context, symbol string) (string, error) {
	stdout, _, err := t.run(ctx, symbolTimeout, "-Tz", "-m", t.MIBFile, symbol)
	if err != nil {
		return "", fmt.Errorf("resolve name for %s: %w", symbol, err)
	}
	return strings.TrimSpace(stdout), nil
}

func (t *SnmpTranslate) Describe(ctx context.Context, symbol string) (string, error) {
	stdout, _, err := t.run(ctx, symbolTimeout, "-Td", "-m", t.MIBFile, symbol)
	if err != nil {
		return "", fmt.Errorf("resolve description for %s: %w", symbol, err)
	}
	return stdout, nil
}

// run executes one snmptranslate invocation, capturing stdout and stderr
// separately. The context bounds the process lifetime; CommandContext kills
// the child on expiry so no process handles leak.
func (t *SnmpTranslate) run(ctx context.Context, base time.Duration, args ...string) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout(base))
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.Binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// PATH lookups fail with exec.ErrNotFound, explicit paths with
		// os.ErrNotExist.
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return "", "", fmt.Errorf("%w: %s", ErrTranslatorNotFound, t.Binary)
		}
		if ctx.Err() == context.DeadlineExceeded {
			return stdout.String(), stderr.String(), fmt.Errorf("snmptranslate timed out after %s", t.timeout(base))
		}
		return stdout.String(), stderr.String(), fmt.Errorf("snmptranslate %s: %w", args[0], err)
	}
	return stdout.String(), stderr.String(), nil
}

func (t *SnmpTranslate) timeout(base time.Duration) time.Duration {
	scale := t.TimeoutScale
	if scale <= 0 {
		scale = 1.0
	}
	return time.Duration(float64(base) * scale)
}

// splitSymbols parses the -Tl symbol listing, dropping blank lines and
// comments.
func splitSymbols(out string) []string {
	var symbols []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, line)
	}
	return symbols
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
