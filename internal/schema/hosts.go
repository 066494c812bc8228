// Package schema defines the expected CSV columns for host imports.
package schema

import "strings"

// ColumnSpec defines one expected CSV column.
type ColumnSpec struct {
	Name     string // Normalized column name (trimmed, upper-case)
	Default  string // Value used when the column is absent from the file
	Required bool   // Column must exist in the header and be non-empty per row
}

// Well-known column names.
const (
	ColName        = "NAME"
	ColVisibleName = "VISIBLE_NAME"
	ColDescription = "DESCRIPTION"
	ColHostGroups  = "HOST_GROUPS"
	ColHostTags    = "HOST_TAGS"
	ColProxy       = "PROXY"
	ColTemplates   = "TEMPLATES"

	ColAgentIP   = "AGENT_IP"
	ColAgentDNS  = "AGENT_DNS"
	ColAgentPort = "AGENT_PORT"

	ColSNMPIP      = "SNMP_IP"
	ColSNMPDNS     = "SNMP_DNS"
	ColSNMPPort    = "SNMP_PORT"
	ColSNMPVersion = "SNMP_VERSION"

	ColJMXIP   = "JMX_IP"
	ColJMXDNS  = "JMX_DNS"
	ColJMXPort = "JMX_PORT"
)

// Default port values for blank interface port columns.
const (
	DefaultAgentPort = "10050"
	DefaultSNMPPort  = "161"
	DefaultJMXPort   = "12345"

	DefaultSNMPVersion = "1"
)

// HostColumnSpecs defines the stock host import schema.
// HOST_GROUPS appears twice in the historical definition; the registry is
// keyed by name, so the duplicate collapses harmlessly.
var HostColumnSpecs = []ColumnSpec{
	{Name: ColName, Required: true},
	{Name: ColVisibleName},
	{Name: ColHostGroups, Required: true},
	{Name: ColHostTags},
	{Name: ColHostGroups, Required: true},
	{Name: ColProxy},
	{Name: ColTemplates},
	{Name: ColDescription},
	{Name: ColAgentIP},
	{Name: ColAgentDNS},
	{Name: ColAgentPort, Default: DefaultAgentPort},
	{Name: ColSNMPIP},
	{Name: ColSNMPDNS},
	{Name: ColSNMPPort, Default: DefaultSNMPPort},
	{Name: ColSNMPVersion, Default: DefaultSNMPVersion},
	{Name: ColJMXIP},
	{Name: ColJMXDNS},
	{Name: ColJMXPort, Default: DefaultJMXPort},
}

// Registry holds an ordered, uniquely-keyed set of column specs.
type Registry struct {
	specs []ColumnSpec
	byName map[string]ColumnSpec
}

// NewRegistry builds a registry from specs. Column names are normalized the
// same way CSV headers are (trimmed, upper-cased). Later duplicates win.
func NewRegistry(specs []ColumnSpec) *Registry {
	r := &Registry{
		byName: make(map[string]ColumnSpec, len(specs)),
	}
	for _, spec := range specs {
		spec.Name = Normalize(spec.Name)
		if _, seen := r.byName[spec.Name]; !seen {
			r.specs = append(r.specs, spec)
		} else {
			for i := range r.specs {
				if r.specs[i].Name == spec.Name {
					r.specs[i] = spec
					break
				}
			}
		}
		r.byName[spec.Name] = spec
	}
	return r
}

// Default returns the stock host import registry.
func Default() *Registry {
	return NewRegistry(HostColumnSpecs)
}

// Columns returns the specs in definition order.
func (r *Registry) Columns() []ColumnSpec {
	out := make([]ColumnSpec, len(r.specs))
	copy(out, r.specs)
	return out
}

// Lookup returns the spec for a normalized column name.
func (r *Registry) Lookup(name string) (ColumnSpec, bool) {
	spec, ok := r.byName[Normalize(name)]
	return spec, ok
}

// Len returns the number of distinct columns.
func (r *Registry) Len() int {
	return len(r.specs)
}

// Required returns the specs that must be present in the header.
func (r *Registry) Required() []ColumnSpec {
	var out []ColumnSpec
	for _, spec := range r.specs {
		if spec.Required {
			out = append(out, spec)
		}
	}
	return out
}

// Normalize converts a raw header cell to its canonical column name.
func Normalize(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
