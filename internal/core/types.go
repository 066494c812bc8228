// Package core implements the host CSV import pipeline: parsing and
// validating delimited files, transforming rows into host descriptors, and
// submitting them to the inventory service.
// This package has no HTTP dependencies and can be driven by any frontend.
package core

import "github.com/hostfleet/csvimport/internal/schema"

// Default parser settings. Both are overridable via Parser fields.
const (
	DefaultSeparator  = ';'
	DefaultMaxLineLen = 1024
)

// SNMP community placeholder used when building SNMP interfaces.
const SNMPCommunityMacro = "{$SNMP_COMMUNITY}"

// Supported SNMP protocol versions.
var SupportedSNMPVersions = []int{1, 2, 3}

// ValidatedHost is one parsed data row. Fields holds a value for every
// column in the schema registry: the row's own trimmed value, or the
// column's default when the column was absent from the file.
type ValidatedHost struct {
	Line   int               // physical line number (header is line 1)
	Fields map[string]string // normalized column name -> trimmed value
}

// Get returns the value for a normalized column name.
func (h ValidatedHost) Get(name string) string {
	return h.Fields[schema.Normalize(name)]
}

// HostTag is a tag name with an optional value. An empty Value means the
// source token had no colon, i.e. the tag carries no value.
type HostTag struct {
	Tag   string `json:"tag"`
	Value string `json:"value,omitempty"`
}

// InterfaceType identifies the kind of network interface on a host.
type InterfaceType int

const (
	InterfaceAgent InterfaceType = iota
	InterfaceSNMP
	InterfaceJMX
)

func (t InterfaceType) String() string {
	switch t {
	case InterfaceAgent:
		return "agent"
	case InterfaceSNMP:
		return "snmp"
	case InterfaceJMX:
		return "jmx"
	default:
		return "unknown"
	}
}

// InterfaceSpec is one typed network interface on a host descriptor.
// UseIP is true iff IP is non-empty; otherwise DNS is used.
type InterfaceSpec struct {
	Type  InterfaceType `json:"type"`
	UseIP bool          `json:"useip"`
	IP    string        `json:"ip,omitempty"`
	DNS   string        `json:"dns,omitempty"`
	Port  int           `json:"port"`

	// SNMP interfaces only.
	SNMPVersion   int    `json:"snmpVersion,omitempty"`
	SNMPCommunity string `json:"snmpCommunity,omitempty"`
}

// HostDescriptor is the transformed, API-ready shape of one CSV row.
type HostDescriptor struct {
	Line          int             `json:"line"`
	Name          string          `json:"name"`
	VisibleName   string          `json:"visibleName,omitempty"`
	Description   string          `json:"description,omitempty"`
	GroupNames    []string        `json:"groupNames"`
	Tags          []HostTag       `json:"tags,omitempty"`
	ProxyName     string          `json:"proxyName,omitempty"`
	TemplateNames []string        `json:"templateNames,omitempty"`
	Interfaces    []InterfaceSpec `json:"interfaces,omitempty"`
}

// ImportResult is the per-row outcome of the submit step. Exactly one of
// HostID (success) or Message (failure) is set. Warnings lists non-fatal
// reference problems (missing proxy or template) on otherwise imported rows.
type ImportResult struct {
	Line     int      `json:"line"`
	HostID   string   `json:"hostId,omitempty"`
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// OK reports whether the row was imported.
func (r ImportResult) OK() bool {
	return r.HostID != ""
}

// ParseResult is the output of the validate step: validated rows in file
// order plus per-row diagnostics for the rows that were skipped.
type ParseResult struct {
	Hosts     []ValidatedHost
	RowErrors []RowError
}
