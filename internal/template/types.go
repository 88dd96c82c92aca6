package template

// Zabbix 6.0 template export document. Field order in these structs is the
// key order in the emitted YAML, so it must not be rearranged.

type Export struct {
	ZabbixExport ExportBody `yaml:"zabbix_export"`
}

type ExportBody struct {
	Version   string     `yaml:"version"`
	Templates []Template `yaml:"templates"`
	ValueMaps []ValueMap `yaml:"valuemaps,omitempty"`
}

type Template struct {
	UUID           string          `yaml:"uuid"`
	Template       string          `yaml:"template"`
	Name           string          `yaml:"name"`
	Description    string          `yaml:"description"`
	Groups         []Group         `yaml:"groups"`
	Items          []Item          `yaml:"items"`
	DiscoveryRules []DiscoveryRule `yaml:"discovery_rules"`

	// Empty placeholder sections, kept so the export can be extended by
	// hand after import.
	Graphs     []any `yaml:"graphs"`
	Triggers   []any `yaml:"triggers"`
	Dashboards []any `yaml:"dashboards"`
}

type Group struct {
	Name string `yaml:"name"`
}

// Item is a monitoring item; the same shape serves as an item prototype
// inside discovery rules, with the {#SNMPINDEX} macro substituted into
// name, key and snmp_oid.
type Item struct {
	UUID        string       `yaml:"uuid"`
	Name        string       `yaml:"name"`
	Type        string       `yaml:"type"`
	SNMPOID     string       `yaml:"snmp_oid"`
	Key         string       `yaml:"key"`
	Delay       string       `yaml:"delay"`
	History     string       `yaml:"history"`
	Description string       `yaml:"description"`
	ValueType   string       `yaml:"value_type,omitempty"`
	Trends      string       `yaml:"trends,omitempty"`
	Units       string       `yaml:"units,omitempty"`
	ValueMap    *ValueMapRef `yaml:"valuemap,omitempty"`
}

type ValueMapRef struct {
	Name string `yaml:"name"`
}

type DiscoveryRule struct {
	UUID           string `yaml:"uuid"`
	Name           string `yaml:"name"`
	Delay          string `yaml:"delay"`
	Key            string `yaml:"key"`
	Type           string `yaml:"type"`
	SNMPOID        string `yaml:"snmp_oid"`
	ItemPrototypes []Item `yaml:"item_prototypes"`
}

type ValueMap struct {
	UUID     string         `yaml:"uuid"`
	Name     string         `yaml:"name"`
	Mappings []ValueMapping `yaml:"mappings"`
}

type ValueMapping struct {
	Value    string `yaml:"value"`
	NewValue string `yaml:"newvalue"`
}
