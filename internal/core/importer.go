package core

// importer.go implements the submit step: resolving group, proxy and
// template names against the inventory service and creating one host per
// descriptor.
//
// Name resolution is cached for the duration of one run. Group creation is
// idempotent under races: find first, create on miss, and re-resolve when
// the create is rejected as a duplicate (another import won the race).

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/hostfleet/csvimport/internal/inventory"
)

// Importer submits host descriptors to the inventory service.
// An Importer carries per-run caches and must not be reused across runs.
type Importer struct {
	inv    inventory.Service
	logger *slog.Logger

	groups    map[string]string
	proxies   map[string]string // "" means looked up and not found
	templates map[string]string
}

// NewImporter creates an importer backed by the given inventory service.
func NewImporter(inv inventory.Service, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		inv:       inv,
		logger:    logger,
		groups:    make(map[string]string),
		proxies:   make(map[string]string),
		templates: make(map[string]string),
	}
}

// Run imports the descriptors in order and returns one result per
// descriptor, preserving input order. Rows are independent: a failing row
// never stops the run. If the context is cancelled, already-created hosts
// are left intact, no further rows are scheduled, and the partial results
// are returned together with the context error.
func (im *Importer) Run(ctx context.Context, hosts []HostDescriptor) ([]ImportResult, error) {
	results := make([]ImportResult, 0, len(hosts))
	for _, host := range hosts {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := im.importOne(ctx, host)
		if result.OK() {
			im.logger.Info("host imported",
				"host", host.Name,
				"host_id", result.HostID,
				"line", host.Line,
				"warnings", len(result.Warnings),
			)
		} else {
			im.logger.Warn("host import failed",
				"host", host.Name,
				"line", host.Line,
				"error", result.Message,
			)
		}
		results = append(results, result)
	}
	return results, nil
}

// importOne resolves all references for one descriptor and submits the
// create call. Reference warnings degrade the row; only the create call and
// group resolution can fail it.
func (im *Importer) importOne(ctx context.Context, host HostDescriptor) ImportResult {
	result := ImportResult{Line: host.Line}

	req := inventory.HostCreate{
		Host:        host.Name,
		Name:        host.VisibleName,
		Description: host.Description,
	}

	for _, name := range host.GroupNames {
		id, err := im.resolveGroup(ctx, name)
		if err != nil {
			result.Message = err.Error()
			return result
		}
		req.GroupIDs = append(req.GroupIDs, id)
	}

	if host.ProxyName != "" {
		id, err := im.resolveProxy(ctx, host.ProxyName)
		if err != nil {
			result.Message = err.Error()
			return result
		}
		if id == "" {
			result.Warnings = append(result.Warnings, "proxy not found: "+host.ProxyName)
		}
		req.ProxyID = id
	}

	for _, name := range host.TemplateNames {
		id, err := im.resolveTemplate(ctx, name)
		if err != nil {
			result.Message = err.Error()
			return result
		}
		if id == "" {
			result.Warnings = append(result.Warnings, "template not found: "+name)
			continue
		}
		req.TemplateIDs = append(req.TemplateIDs, id)
	}

	for _, tag := range host.Tags {
		req.Tags = append(req.Tags, inventory.Tag{Tag: tag.Tag, Value: tag.Value})
	}
	for _, iface := range host.Interfaces {
		req.Interfaces = append(req.Interfaces, wireInterface(iface))
	}

	hostID, err := im.inv.CreateHost(ctx, req)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	result.HostID = hostID
	return result
}

// resolveGroup returns the ID for a group name, creating the group if it
// does not exist yet.
func (im *Importer) resolveGroup(ctx context.Context, name string) (string, error) {
	if id, ok := im.groups[name]; ok {
		return id, nil
	}

	group, err := im.inv.FindGroupByName(ctx, name)
	if errors.Is(err, inventory.ErrNotFound) {
		group, err = im.inv.CreateGroup(ctx, name)
		var dup *inventory.DuplicateError
		if errors.As(err, &dup) {
			// Lost a creation race; the group exists now.
			group, err = im.inv.FindGroupByName(ctx, name)
		}
	}
	if err != nil {
		return "", fmt.Errorf("resolve group %q: %w", name, err)
	}

	im.groups[name] = group.ID
	return group.ID, nil
}

// resolveProxy returns the proxy ID, or "" when the proxy does not exist.
// The not-found case is cached like a hit so it is reported once per name
// per row without re-querying.
func (im *Importer) resolveProxy(ctx context.Context, name string) (string, error) {
	if id, ok := im.proxies[name]; ok {
		return id, nil
	}

	proxy, err := im.inv.FindProxyByName(ctx, name)
	if errors.Is(err, inventory.ErrNotFound) {
		im.proxies[name] = ""
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve proxy %q: %w", name, err)
	}

	im.proxies[name] = proxy.ID
	return proxy.ID, nil
}

// resolveTemplate returns the template ID, or "" when it does not exist.
func (im *Importer) resolveTemplate(ctx context.Context, name string) (string, error) {
	if id, ok := im.templates[name]; ok {
		return id, nil
	}

	template, err := im.inv.FindTemplateByName(ctx, name)
	if errors.Is(err, inventory.ErrNotFound) {
		im.templates[name] = ""
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve template %q: %w", name, err)
	}

	im.templates[name] = template.ID
	return template.ID, nil
}

// wireInterface converts an InterfaceSpec to the inventory wire shape.
func wireInterface(iface InterfaceSpec) inventory.Interface {
	out := inventory.Interface{
		UseIP: iface.UseIP,
		IP:    iface.IP,
		DNS:   iface.DNS,
		Port:  strconv.Itoa(iface.Port),
	}
	switch iface.Type {
	case InterfaceAgent:
		out.Type = inventory.InterfaceAgent
	case InterfaceSNMP:
		out.Type = inventory.InterfaceSNMP
		out.SNMPVersion = iface.SNMPVersion
		out.SNMPCommunity = iface.SNMPCommunity
	case InterfaceJMX:
		out.Type = inventory.InterfaceJMX
	}
	return out
}
