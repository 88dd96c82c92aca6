package template

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mibkit/mib2zabbix/internal/classify"
)

const (
	exportVersion = "6.0"
	itemType      = "SNMP_AGENT"
	indexMacro    = "{#SNMPINDEX}"

	// Zabbix accepts far longer discovery OID strings, but a conservative
	// ceiling keeps the export importable everywhere. Over the ceiling the
	// expression is truncated with a marker, not split into extra rules.
	discoveryExprLimit = 2000
)

// Params carries the per-run template settings resolved from the CLI.
type Params struct {
	Module         string
	TemplateName   string
	Group          string
	CheckDelay     string
	DiscoveryDelay string
	History        string
	Trends         string
}

// Name returns the effective template display name.
func (p Params) Name() string {
	if p.TemplateName != "" {
		return p.TemplateName
	}
	return p.Module + " SNMP"
}

// Build aggregates classified records into a template export document.
// Scalars become items in encounter order; table columns are grouped by
// table OID into discovery rules in first-seen order. The document is
// complete once returned and is never mutated afterwards.
func Build(p Params, records []classify.Record) *Export {
	name := p.Name()

	tmpl := Template{
		UUID:           idFor("template_" + name),
		Template:       name,
		Name:           name,
		Description:    fmt.Sprintf("Template generated from MIB %s", p.Module),
		Groups:         []Group{{Name: p.Group}},
		Items:          []Item{},
		DiscoveryRules: []DiscoveryRule{},
		Graphs:         []any{},
		Triggers:       []any{},
		Dashboards:     []any{},
	}

	scalars := 0
	columns := 0
	groups := newTableGroups()
	for _, rec := range records {
		if rec.IsTableColumn {
			columns++
			groups.add(rec)
			continue
		}
		scalars++
		tmpl.Items = append(tmpl.Items, buildItem(p, rec))
	}
	logrus.Infof("Scalar items: %d, table columns: %d", scalars, columns)

	for _, table := range groups.ordered {
		rule, ok := buildRule(p, table)
		if !ok {
			continue
		}
		tmpl.DiscoveryRules = append(tmpl.DiscoveryRules, rule)
	}

	return &Export{
		ZabbixExport: ExportBody{
			Version:   exportVersion,
			Templates: []Template{tmpl},
			ValueMaps: buildValueMaps(records),
		},
	}
}

// displayName strips the module qualifier from a full name.
func displayName(fullName string) string {
	if _, short, ok := strings.Cut(fullName, "::"); ok {
		return short
	}
	return fullName
}

// columnName is the bare column identifier: the display name up to the
// first dot.
func columnName(fullName string) string {
	name, _, _ := strings.Cut(displayName(fullName), ".")
	return name
}

// valueMapName derives the shared value-map name for a record. Columns use
// the bare column name so prototype references land on the same entry the
// map was registered under. Dedup is by this name alone; two symbols whose
// names collide share one map even if their enumerations differ.
func valueMapName(rec classify.Record) string {
	return fmt.Sprintf("SNMP %s (from MIB)", refName(rec))
}

func refName(rec classify.Record) string {
	if rec.IsTableColumn {
		return columnName(rec.FullName)
	}
	return displayName(rec.FullName)
}

// buildValueMaps collects one value map per distinct name, in record
// encounter order. First registration wins.
func buildValueMaps(records []classify.Record) []ValueMap {
	seen := make(map[string]struct{})
	var maps []ValueMap
	for _, rec := range records {
		if len(rec.Enums) == 0 {
			continue
		}
		name := valueMapName(rec)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		mappings := make([]ValueMapping, 0, len(rec.Enums))
		for _, e := range rec.Enums {
			mappings = append(mappings, ValueMapping{Value: e.Value, NewValue: e.Label})
		}
		maps = append(maps, ValueMap{
			UUID:     idFor(fmt.Sprintf("valuemap_%s_%s", rec.OID, refName(rec))),
			Name:     name,
			Mappings: mappings,
		})
	}
	return maps
}

func buildItem(p Params, rec classify.Record) Item {
	name := displayName(rec.FullName)
	item := Item{
		UUID:        idFor(fmt.Sprintf("item_%s_%s", rec.OID, name)),
		Name:        name,
		Type:        itemType,
		SNMPOID:     rec.OID,
		Key:         sanitizeName(strings.ReplaceAll(rec.FullName, "::", ".")),
		Delay:       p.CheckDelay,
		History:     p.History,
		Description: rec.Description,
		ValueType:   string(rec.Type),
	}
	if item.Description == "" {
		item.Description = "No description available from MIB"
	}
	if rec.Type == classify.Float {
		item.Trends = p.Trends
	}
	item.Units = rec.Units
	if len(rec.Enums) > 0 {
		item.ValueMap = &ValueMapRef{Name: valueMapName(rec)}
	}
	return item
}

// tableGroups buckets columns by table OID (column OID minus the trailing
// .entry.column segments) while remembering first-seen order.
type tableGroups struct {
	ordered []*tableGroup
	byOID   map[string]*tableGroup
}

type tableGroup struct {
	oid     string
	name    string
	columns []classify.Record
}

func newTableGroups() *tableGroups {
	return &tableGroups{byOID: make(map[string]*tableGroup)}
}

func (g *tableGroups) add(rec classify.Record) {
	// Need at least table.entry.column depth below the root to have a
	// table parent; shallower columns have nothing to group under.
	parts := strings.Split(rec.OID, ".")
	if len(parts) < 5 {
		return
	}
	tableParts := parts[:len(parts)-2]
	tableOID := strings.Join(tableParts, ".")

	group, ok := g.byOID[tableOID]
	if !ok {
		// The true table symbol is never resolved; the display name is
		// synthesized from the last two OID segments instead.
		group = &tableGroup{
			oid:  tableOID,
			name: fmt.Sprintf("Table_%s", strings.Join(tableParts[len(tableParts)-2:], "_")),
		}
		g.byOID[tableOID] = group
		g.ordered = append(g.ordered, group)
	}
	group.columns = append(group.columns, rec)
}

func buildRule(p Params, table *tableGroup) (DiscoveryRule, bool) {
	if len(table.columns) == 0 {
		return DiscoveryRule{}, false
	}

	prototypes := make([]Item, 0, len(table.columns))
	macros := make([]string, 0, len(table.columns))
	for _, col := range table.columns {
		prototypes = append(prototypes, buildPrototype(p, col, table.name))
		macro := strings.ToUpper(sanitizeName(columnName(col.FullName)))
		macros = append(macros, fmt.Sprintf("{#%s},%s", macro, col.OID))
	}

	expr := "discovery[" + strings.Join(macros, ",") + "]"
	if len(expr) > discoveryExprLimit {
		logrus.Warnf("Discovery expression for %s exceeds %d characters, truncating", table.name, discoveryExprLimit)
		expr = expr[:discoveryExprLimit-5] + "...]"
	}

	return DiscoveryRule{
		UUID:           idFor(fmt.Sprintf("discovery_%s_%s", table.oid, table.name)),
		Name:           table.name,
		Delay:          p.DiscoveryDelay,
		Key:            sanitizeName("discovery." + strings.ReplaceAll(table.name, " ", "_")),
		Type:           itemType,
		SNMPOID:        expr,
		ItemPrototypes: prototypes,
	}, true
}

func buildPrototype(p Params, col classify.Record, tableName string) Item {
	name := columnName(col.FullName)
	proto := Item{
		UUID:        idFor(fmt.Sprintf("prototype_%s_%s", col.OID, name)),
		Name:        name + "." + indexMacro,
		Type:        itemType,
		SNMPOID:     col.OID + "." + indexMacro,
		Key:         sanitizeName(strings.ReplaceAll(col.FullName, "::", ".") + "[" + indexMacro + "]"),
		Delay:       p.CheckDelay,
		History:     p.History,
		Description: col.Description,
		ValueType:   string(col.Type),
	}
	if proto.Description == "" {
		proto.Description = fmt.Sprintf("Column %s from table %s", name, tableName)
	}
	if col.Type == classify.Float {
		proto.Trends = p.Trends
	}
	proto.Units = col.Units
	if len(col.Enums) > 0 {
		proto.ValueMap = &ValueMapRef{Name: valueMapName(col)}
	}
	return proto
}
