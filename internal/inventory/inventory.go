// Package inventory provides access to the external host-inventory service.
//
// The Service interface covers the five operations the import pipeline needs:
// looking up groups, proxies and templates by exact name, creating missing
// groups, and creating hosts. Client talks to a real JSON-RPC endpoint;
// Memory is an in-memory implementation for tests and local development.
package inventory

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by the Find* operations when no object with the
// requested name exists.
var ErrNotFound = errors.New("not found")

// DuplicateError is returned by create operations when an object with the
// same name already exists. Callers resolving groups should re-run the
// lookup when they see this, so concurrent imports stay idempotent.
type DuplicateError struct {
	Kind string // "group" or "host"
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Name)
}

// Group is a host group known to the inventory service.
type Group struct {
	ID   string `json:"groupid"`
	Name string `json:"name"`
}

// Proxy is a monitoring proxy known to the inventory service.
type Proxy struct {
	ID   string `json:"proxyid"`
	Name string `json:"name"`
}

// Template is a monitoring template known to the inventory service.
type Template struct {
	ID   string `json:"templateid"`
	Name string `json:"name"`
}

// Tag is a name/value pair attached to a host. An empty Value means the tag
// has no value.
type Tag struct {
	Tag   string `json:"tag"`
	Value string `json:"value,omitempty"`
}

// Interface types understood by the inventory service.
const (
	InterfaceAgent = 1
	InterfaceSNMP  = 2
	InterfaceJMX   = 4
)

// Interface is a network endpoint definition attached to a host.
type Interface struct {
	Type          int    `json:"type"`
	UseIP         bool   `json:"useip"`
	IP            string `json:"ip,omitempty"`
	DNS           string `json:"dns,omitempty"`
	Port          string `json:"port"`
	SNMPVersion   int    `json:"snmp_version,omitempty"`
	SNMPCommunity string `json:"snmp_community,omitempty"`
}

// HostCreate is a host-creation request with all references already resolved
// to inventory IDs.
type HostCreate struct {
	Host        string      `json:"host"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	GroupIDs    []string    `json:"groupids"`
	ProxyID     string      `json:"proxyid,omitempty"`
	TemplateIDs []string    `json:"templateids,omitempty"`
	Tags        []Tag       `json:"tags,omitempty"`
	Interfaces  []Interface `json:"interfaces,omitempty"`
}

// Service is the inventory operations the import pipeline depends on.
type Service interface {
	// FindGroupByName looks up a group by exact name. Returns ErrNotFound
	// if no such group exists.
	FindGroupByName(ctx context.Context, name string) (Group, error)

	// CreateGroup creates a new group and returns it with its assigned ID.
	// Returns *DuplicateError if the name is already taken.
	CreateGroup(ctx context.Context, name string) (Group, error)

	// FindProxyByName looks up a proxy by exact name.
	FindProxyByName(ctx context.Context, name string) (Proxy, error)

	// FindTemplateByName looks up a template by exact name.
	FindTemplateByName(ctx context.Context, name string) (Template, error)

	// CreateHost submits a host-creation request and returns the new host ID.
	CreateHost(ctx context.Context, req HostCreate) (string, error)
}
