package classify

import (
	"context"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mibkit/mib2zabbix/internal/translate"
)

// ValueType is the Zabbix value type inferred for a MIB object.
type ValueType string

const (
	Float ValueType = "FLOAT" // numeric values, eligible for trends
	Char  ValueType = "CHAR"  // short text
	Text  ValueType = "TEXT"  // unstructured text
)

// Mapping is one enumerated value from an INTEGER { name(value), ... }
// syntax clause.
type Mapping struct {
	Value string
	Label string
}

// Record is one fully classified MIB object. Records are immutable after
// the processor emits them.
type Record struct {
	Symbol        string
	OID           string
	FullName      string
	Description   string
	Syntax        string
	Type          ValueType
	Units         string
	IsTableColumn bool
	Enums         []Mapping
}

// Processor turns raw symbol names into Records by querying a Translator
// for each symbol and running the extraction passes over its description
// block.
type Processor struct {
	Translator translate.Translator
}

// Run classifies every symbol in enumeration order. Symbols that are not
// fully qualified module::name references, or whose OID lookup fails, are
// dropped without error; no partial record is ever emitted.
func (p *Processor) Run(ctx context.Context, symbols []string) []Record {
	records := make([]Record, 0, len(symbols))
	for _, symbol := range symbols {
		rec, ok := p.processSymbol(ctx, symbol)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	logrus.Infof("Classified %d of %d symbols", len(records), len(symbols))
	return records
}

func (p *Processor) processSymbol(ctx context.Context, symbol string) (Record, bool) {
	if !strings.Contains(symbol, "::") {
		return Record{}, false
	}

	oid, err := p.Translator.OID(ctx, symbol)
	if err != nil || oid == "" {
		logrus.Debugf("Skipping %s: %v", symbol, err)
		return Record{}, false
	}

	fullName, err := p.Translator.FullName(ctx, symbol)
	if err != nil || fullName == "" {
		fullName = symbol
	}

	// A failed description lookup is not fatal; the extraction passes are
	// total and simply find nothing in an empty block.
	detail, err := p.Translator.Describe(ctx, symbol)
	if err != nil {
		logrus.Debugf("No description block for %s: %v", symbol, err)
		detail = ""
	}

	syntax := extractSyntax(detail)
	valueType, units := inferType(syntax, detail)

	return Record{
		Symbol:        symbol,
		OID:           oid,
		FullName:      fullName,
		Description:   extractDescription(detail),
		Syntax:        syntax,
		Type:          valueType,
		Units:         units,
		IsTableColumn: isTableColumn(symbol, oid, syntax, detail),
		Enums:         extractEnums(detail),
	}, true
}

var (
	syntaxRe      = regexp.MustCompile(`(?m)SYNTAX[ \t]+([^{\n]+?)[ \t]*(?:\{|$)`)
	descriptionRe = regexp.MustCompile(`(?s)DESCRIPTION\s+"([^"]*)"`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
	enumRe        = regexp.MustCompile(`SYNTAX\s+INTEGER\s*\{([^}]+)\}`)
	enumPairRe    = regexp.MustCompile(`^([^(]+)\(([^)]+)\)`)
	unitHintRe    = regexp.MustCompile(`(?i)\(([^)]*(?:seconds|bytes|bits|percent)[^)]*)\)`)
)

// extractSyntax pulls the syntax token sequence from a description block:
// everything after the SYNTAX keyword up to an opening brace or the end of
// the line. Returns "" when no SYNTAX clause is present.
func extractSyntax(detail string) string {
	m := syntaxRe.FindStringSubmatch(detail)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// extractDescription pulls the quoted DESCRIPTION clause, collapsing all
// internal whitespace runs to single spaces.
func extractDescription(detail string) string {
	m := descriptionRe.FindStringSubmatch(detail)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(m[1], " "))
}

type typeEntry struct {
	token string
	vt    ValueType
	units string
}

// typeTable maps known SNMP syntax tokens to Zabbix value types and default
// units. A slice, not a map: the substring pass takes the first hit, so the
// order must stay stable.
var typeTable = []typeEntry{
	{"INTEGER", Float, ""},
	{"Integer32", Float, ""},
	{"Unsigned32", Float, ""},
	{"Counter32", Float, ""},
	{"Counter64", Float, ""},
	{"Gauge32", Float, ""},
	{"TimeTicks", Float, "s"},
	{"OCTET STRING", Char, ""},
	{"OBJECT IDENTIFIER", Char, ""},
	{"IpAddress", Text, ""},
	{"BITS", Text, ""},
	{"Opaque", Text, ""},
	{"DisplayString", Char, ""},
	{"MacAddress", Char, ""},
	{"PhysAddress", Char, ""},
}

// unitHints is an ordered list because later keys are substrings of text
// containing earlier ones ("1/100 seconds" must map to s, not b).
var unitHints = []struct{ keyword, unit string }{
	{"seconds", "s"},
	{"second", "s"},
	{"bytes", "B"},
	{"bits", "b"},
	{"percent", "%"},
}

// inferType maps a syntax token to a Zabbix value type and unit. Exact
// token match wins; then substring match against the same table, at which
// point a parenthesized unit hint in the syntax or description may override
// the default unit; finally a keyword fallback.
func inferType(syntax, detail string) (ValueType, string) {
	for _, entry := range typeTable {
		if entry.token == syntax {
			return entry.vt, entry.units
		}
	}

	for _, entry := range typeTable {
		if strings.Contains(syntax, entry.token) {
			if unit := unitHint(syntax + " " + detail); unit != "" {
				return entry.vt, unit
			}
			return entry.vt, entry.units
		}
	}

	switch {
	case strings.Contains(syntax, "INTEGER"),
		strings.Contains(syntax, "Counter"),
		strings.Contains(syntax, "Gauge"),
		strings.Contains(syntax, "Enum"):
		return Float, ""
	case strings.Contains(syntax, "STRING"):
		return Char, ""
	default:
		return Text, ""
	}
}

func unitHint(text string) string {
	m := unitHintRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	hint := strings.ToLower(m[1])
	for _, u := range unitHints {
		if strings.Contains(hint, u.keyword) {
			return u.unit
		}
	}
	return ""
}

// isTableColumn decides whether a symbol is a per-row table column. It is a
// union of independent heuristics, not a grammar check: MIB authoring style
// varies too much for any single rule to hold.
func isTableColumn(symbol, oid, syntax, detail string) bool {
	// Conventional entry position: table.entry(1).column. A trailing run of
	// 1s is the shape of group scalars like sysDescr (.1.3.6.1.2.1.1.1),
	// so the segment before the entry must not also be 1.
	parts := strings.Split(oid, ".")
	if len(parts) > 3 && parts[len(parts)-2] == "1" && parts[len(parts)-3] != "1" {
		return true
	}
	if strings.Contains(symbol, "Table") || strings.Contains(symbol, "Entry") {
		return true
	}
	if strings.Contains(strings.ToUpper(syntax), "TABLE") {
		return true
	}
	if strings.Contains(detail, "A list of") ||
		strings.Contains(strings.ToLower(detail), "table contains") {
		return true
	}
	return false
}

// extractEnums parses SYNTAX INTEGER { name(value), ... } into an ordered
// mapping list. Simple comma splitting only; unusual formatting degrades
// silently to fewer (or zero) pairs.
func extractEnums(detail string) []Mapping {
	m := enumRe.FindStringSubmatch(detail)
	if m == nil {
		return nil
	}
	var mappings []Mapping
	for _, part := range strings.Split(m[1], ",") {
		pair := enumPairRe.FindStringSubmatch(strings.TrimSpace(part))
		if pair == nil {
			continue
		}
		mappings = append(mappings, Mapping{
			Value: strings.TrimSpace(pair[2]),
			Label: strings.TrimSpace(pair[1]),
		})
	}
	return mappings
}
