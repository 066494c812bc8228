package core

import (
	"reflect"
	"strings"
	"testing"

	"github.com/hostfleet/csvimport/internal/schema"
)

// testHost builds a ValidatedHost with every schema column populated, then
// applies overrides. Mirrors what the parser produces.
func testHost(t *testing.T, overrides map[string]string) ValidatedHost {
	t.Helper()
	host := ValidatedHost{Line: 2, Fields: make(map[string]string)}
	for _, spec := range schema.Default().Columns() {
		host.Fields[spec.Name] = spec.Default
	}
	host.Fields[schema.ColName] = "a"
	host.Fields[schema.ColHostGroups] = "Linux"
	for k, v := range overrides {
		host.Fields[schema.Normalize(k)] = v
	}
	return host
}

func TestTransform_TagsAndNames(t *testing.T) {
	host := testHost(t, map[string]string{
		"VISIBLE_NAME": "",
		"HOST_TAGS":    "env:prod,critical",
	})

	d, err := Transform(host)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	if d.Name != "a" {
		t.Errorf("Name = %q, want %q", d.Name, "a")
	}
	if d.VisibleName != "" {
		t.Errorf("VisibleName = %q, want empty", d.VisibleName)
	}
	want := []HostTag{{Tag: "env", Value: "prod"}, {Tag: "critical"}}
	if !reflect.DeepEqual(d.Tags, want) {
		t.Errorf("Tags = %+v, want %+v", d.Tags, want)
	}
}

func TestTransform_TagSplitOnFirstColonOnly(t *testing.T) {
	host := testHost(t, map[string]string{"HOST_TAGS": "url:http://x:80"})

	d, err := Transform(host)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	want := []HostTag{{Tag: "url", Value: "http://x:80"}}
	if !reflect.DeepEqual(d.Tags, want) {
		t.Errorf("Tags = %+v, want %+v", d.Tags, want)
	}
}

func TestTransform_GroupSplitting(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"plain", "Linux,Prod", []string{"Linux", "Prod"}},
		{"trimmed", " Linux , Prod ", []string{"Linux", "Prod"}},
		{"empty tokens dropped", "Linux,,Prod,", []string{"Linux", "Prod"}},
		{"duplicates kept in order", "Prod,Linux,Prod", []string{"Prod", "Linux", "Prod"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Transform(testHost(t, map[string]string{"HOST_GROUPS": tt.value}))
			if err != nil {
				t.Fatalf("Transform() error = %v", err)
			}
			if !reflect.DeepEqual(d.GroupNames, tt.want) {
				t.Errorf("GroupNames = %v, want %v", d.GroupNames, tt.want)
			}
		})
	}
}

func TestTransform_AgentInterfaceDNSOnly(t *testing.T) {
	host := testHost(t, map[string]string{
		"AGENT_IP":   "",
		"AGENT_DNS":  "h1",
		"AGENT_PORT": "",
	})

	d, err := Transform(host)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if len(d.Interfaces) != 1 {
		t.Fatalf("got %d interfaces, want 1", len(d.Interfaces))
	}
	iface := d.Interfaces[0]
	if iface.Type != InterfaceAgent {
		t.Errorf("Type = %v, want agent", iface.Type)
	}
	if iface.UseIP {
		t.Error("UseIP = true, want false when only DNS is set")
	}
	if iface.DNS != "h1" {
		t.Errorf("DNS = %q, want %q", iface.DNS, "h1")
	}
	if iface.Port != 10050 {
		t.Errorf("Port = %d, want 10050", iface.Port)
	}
}

func TestTransform_NoInterfaceWhenBothBlank(t *testing.T) {
	d, err := Transform(testHost(t, nil))
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if len(d.Interfaces) != 0 {
		t.Errorf("got %d interfaces, want 0", len(d.Interfaces))
	}
}

func TestTransform_SNMPInterfaceDefaults(t *testing.T) {
	host := testHost(t, map[string]string{
		"SNMP_IP":      "10.0.0.1",
		"SNMP_PORT":    "",
		"SNMP_VERSION": "",
	})

	d, err := Transform(host)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if len(d.Interfaces) != 1 {
		t.Fatalf("got %d interfaces, want 1", len(d.Interfaces))
	}
	iface := d.Interfaces[0]
	if iface.Type != InterfaceSNMP {
		t.Errorf("Type = %v, want snmp", iface.Type)
	}
	if !iface.UseIP {
		t.Error("UseIP = false, want true when IP is set")
	}
	if iface.Port != 161 {
		t.Errorf("Port = %d, want 161", iface.Port)
	}
	if iface.SNMPVersion != 1 {
		t.Errorf("SNMPVersion = %d, want 1", iface.SNMPVersion)
	}
	if iface.SNMPCommunity != SNMPCommunityMacro {
		t.Errorf("SNMPCommunity = %q, want %q", iface.SNMPCommunity, SNMPCommunityMacro)
	}
}

func TestTransform_AllThreeInterfaces(t *testing.T) {
	host := testHost(t, map[string]string{
		"AGENT_IP": "10.0.0.1",
		"SNMP_DNS": "snmp.example.com",
		"JMX_IP":   "10.0.0.2",
		"JMX_PORT": "9999",
	})

	d, err := Transform(host)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if len(d.Interfaces) != 3 {
		t.Fatalf("got %d interfaces, want 3", len(d.Interfaces))
	}
	if d.Interfaces[2].Type != InterfaceJMX || d.Interfaces[2].Port != 9999 {
		t.Errorf("JMX interface = %+v, want port 9999", d.Interfaces[2])
	}
}

func TestTransform_InvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{"text", "abc"},
		{"zero", "0"},
		{"negative", "-1"},
		{"too large", "65536"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := testHost(t, map[string]string{
				"AGENT_DNS":  "h1",
				"AGENT_PORT": tt.port,
			})
			_, err := Transform(host)
			if err == nil {
				t.Fatalf("Transform() should reject port %q instead of coercing it", tt.port)
			}
			rowErr, ok := err.(*RowError)
			if !ok {
				t.Fatalf("error type = %T, want *RowError", err)
			}
			if rowErr.Line != 2 {
				t.Errorf("Line = %d, want 2", rowErr.Line)
			}
			if !strings.Contains(rowErr.Message, "invalid port") {
				t.Errorf("message %q should mention the invalid port", rowErr.Message)
			}
		})
	}
}

func TestTransform_InvalidSNMPVersion(t *testing.T) {
	host := testHost(t, map[string]string{
		"SNMP_IP":      "10.0.0.1",
		"SNMP_VERSION": "4",
	})

	_, err := Transform(host)
	if err == nil {
		t.Fatal("Transform() should reject SNMP version 4")
	}
	if !strings.Contains(err.Error(), "invalid SNMP version") {
		t.Errorf("error %q should mention the SNMP version", err.Error())
	}
}

func TestTransform_SupportedSNMPVersions(t *testing.T) {
	for _, version := range []string{"1", "2", "3"} {
		host := testHost(t, map[string]string{
			"SNMP_IP":      "10.0.0.1",
			"SNMP_VERSION": version,
		})
		if _, err := Transform(host); err != nil {
			t.Errorf("version %s: Transform() error = %v", version, err)
		}
	}
}

func TestTransform_ProxyAndTemplates(t *testing.T) {
	host := testHost(t, map[string]string{
		"PROXY":     "proxy-1",
		"TEMPLATES": "Linux by agent, Apache",
	})

	d, err := Transform(host)
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if d.ProxyName != "proxy-1" {
		t.Errorf("ProxyName = %q, want proxy-1", d.ProxyName)
	}
	want := []string{"Linux by agent", "Apache"}
	if !reflect.DeepEqual(d.TemplateNames, want) {
		t.Errorf("TemplateNames = %v, want %v", d.TemplateNames, want)
	}
}

func TestSplitList_Empty(t *testing.T) {
	if got := SplitList(""); got != nil {
		t.Errorf("SplitList(\"\") = %v, want nil", got)
	}
	if got := SplitList(" , ,"); got != nil {
		t.Errorf("SplitList of only empty tokens = %v, want nil", got)
	}
}
