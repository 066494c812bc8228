package core

// transform.go implements the row transformer: a pure mapping from a
// validated row to an API-ready host descriptor. No I/O, no side effects.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hostfleet/csvimport/internal/schema"
)

// Transform maps a validated row into a host descriptor. The returned error
// is always a *RowError (unparsable port, unsupported SNMP version).
func Transform(host ValidatedHost) (HostDescriptor, error) {
	d := HostDescriptor{
		Line:          host.Line,
		Name:          host.Get(schema.ColName),
		VisibleName:   host.Get(schema.ColVisibleName),
		Description:   host.Get(schema.ColDescription),
		GroupNames:    SplitList(host.Get(schema.ColHostGroups)),
		Tags:          ParseTags(host.Get(schema.ColHostTags)),
		ProxyName:     host.Get(schema.ColProxy),
		TemplateNames: SplitList(host.Get(schema.ColTemplates)),
	}

	agent, err := buildInterface(host, InterfaceAgent,
		schema.ColAgentIP, schema.ColAgentDNS, schema.ColAgentPort, schema.DefaultAgentPort)
	if err != nil {
		return HostDescriptor{}, err
	}
	if agent != nil {
		d.Interfaces = append(d.Interfaces, *agent)
	}

	snmp, err := buildInterface(host, InterfaceSNMP,
		schema.ColSNMPIP, schema.ColSNMPDNS, schema.ColSNMPPort, schema.DefaultSNMPPort)
	if err != nil {
		return HostDescriptor{}, err
	}
	if snmp != nil {
		version, err := parseSNMPVersion(host)
		if err != nil {
			return HostDescriptor{}, err
		}
		snmp.SNMPVersion = version
		snmp.SNMPCommunity = SNMPCommunityMacro
		d.Interfaces = append(d.Interfaces, *snmp)
	}

	jmx, err := buildInterface(host, InterfaceJMX,
		schema.ColJMXIP, schema.ColJMXDNS, schema.ColJMXPort, schema.DefaultJMXPort)
	if err != nil {
		return HostDescriptor{}, err
	}
	if jmx != nil {
		d.Interfaces = append(d.Interfaces, *jmx)
	}

	return d, nil
}

// buildInterface constructs one interface entry, or nil when both the IP
// and DNS fields are blank. UseIP is true iff IP is non-empty.
func buildInterface(host ValidatedHost, typ InterfaceType, ipCol, dnsCol, portCol, portDefault string) (*InterfaceSpec, error) {
	ip := host.Get(ipCol)
	dns := host.Get(dnsCol)
	if ip == "" && dns == "" {
		return nil, nil
	}

	port, err := parsePort(host, portCol, portDefault)
	if err != nil {
		return nil, err
	}

	return &InterfaceSpec{
		Type:  typ,
		UseIP: ip != "",
		IP:    ip,
		DNS:   dns,
		Port:  port,
	}, nil
}

// parsePort parses a port column, falling back to the documented default
// when blank. Values outside 1-65535 or non-numeric text fail the row; the
// historical behavior of coercing bad text to 0 is deliberately not kept.
func parsePort(host ValidatedHost, col, def string) (int, *RowError) {
	raw := host.Get(col)
	if raw == "" {
		raw = def
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port < 1 || port > 65535 {
		return 0, &RowError{
			Line:    host.Line,
			Message: fmt.Sprintf("invalid port %q in column %q", raw, col),
		}
	}
	return port, nil
}

func parseSNMPVersion(host ValidatedHost) (int, *RowError) {
	raw := host.Get(schema.ColSNMPVersion)
	if raw == "" {
		raw = schema.DefaultSNMPVersion
	}
	version, err := strconv.Atoi(raw)
	if err == nil {
		for _, v := range SupportedSNMPVersions {
			if version == v {
				return version, nil
			}
		}
	}
	return 0, &RowError{
		Line:    host.Line,
		Message: fmt.Sprintf("invalid SNMP version %q", raw),
	}
}

// SplitList splits a comma-joined list, trimming tokens and dropping empty
// ones. Order is preserved and duplicates are kept.
func SplitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, token := range strings.Split(value, ",") {
		token = strings.TrimSpace(token)
		if token != "" {
			out = append(out, token)
		}
	}
	return out
}

// ParseTags splits a comma-joined tag list. Each entry is split on the
// first colon only; an entry without a colon is a tag with no value.
func ParseTags(value string) []HostTag {
	var out []HostTag
	for _, token := range SplitList(value) {
		name, tagValue, _ := strings.Cut(token, ":")
		out = append(out, HostTag{
			Tag:   strings.TrimSpace(name),
			Value: strings.TrimSpace(tagValue),
		})
	}
	return out
}
