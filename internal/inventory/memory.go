package inventory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// Memory is an in-memory Service implementation for tests and local
// development. All operations are safe for concurrent use.
type Memory struct {
	mu        sync.Mutex
	nextID    int
	groups    map[string]Group
	proxies   map[string]Proxy
	templates map[string]Template
	hosts     map[string]string // technical name -> host ID

	// Calls records every operation in order as "method name" strings.
	Calls []string

	// CreateGroupErr, when set, is returned by the next CreateGroup call
	// and then cleared. Used to exercise duplicate-create races.
	CreateGroupErr error

	// CreateHostErr, when set, is returned by every CreateHost call.
	CreateHostErr error
}

// NewMemory creates an empty in-memory inventory.
func NewMemory() *Memory {
	return &Memory{
		groups:    make(map[string]Group),
		proxies:   make(map[string]Proxy),
		templates: make(map[string]Template),
		hosts:     make(map[string]string),
	}
}

// AddGroup seeds a group and returns it.
func (m *Memory) AddGroup(name string) Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := Group{ID: m.newID(), Name: name}
	m.groups[name] = g
	return g
}

// AddProxy seeds a proxy and returns it.
func (m *Memory) AddProxy(name string) Proxy {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := Proxy{ID: m.newID(), Name: name}
	m.proxies[name] = p
	return p
}

// AddTemplate seeds a template and returns it.
func (m *Memory) AddTemplate(name string) Template {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := Template{ID: m.newID(), Name: name}
	m.templates[name] = t
	return t
}

// GroupCount returns the number of groups currently stored.
func (m *Memory) GroupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.groups)
}

// CallLog returns a copy of the recorded operations.
func (m *Memory) CallLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Calls))
	copy(out, m.Calls)
	return out
}

func (m *Memory) newID() string {
	m.nextID++
	return strconv.Itoa(m.nextID)
}

func (m *Memory) record(method, name string) {
	m.Calls = append(m.Calls, method+" "+name)
}

// FindGroupByName implements Service.
func (m *Memory) FindGroupByName(ctx context.Context, name string) (Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("hostgroup.get", name)
	if g, ok := m.groups[name]; ok {
		return g, nil
	}
	return Group{}, fmt.Errorf("group %q: %w", name, ErrNotFound)
}

// CreateGroup implements Service.
func (m *Memory) CreateGroup(ctx context.Context, name string) (Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("hostgroup.create", name)
	if err := m.CreateGroupErr; err != nil {
		m.CreateGroupErr = nil
		return Group{}, err
	}
	if _, exists := m.groups[name]; exists {
		return Group{}, &DuplicateError{Kind: "group", Name: name}
	}
	g := Group{ID: m.newID(), Name: name}
	m.groups[name] = g
	return g, nil
}

// FindProxyByName implements Service.
func (m *Memory) FindProxyByName(ctx context.Context, name string) (Proxy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("proxy.get", name)
	if p, ok := m.proxies[name]; ok {
		return p, nil
	}
	return Proxy{}, fmt.Errorf("proxy %q: %w", name, ErrNotFound)
}

// FindTemplateByName implements Service.
func (m *Memory) FindTemplateByName(ctx context.Context, name string) (Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("template.get", name)
	if t, ok := m.templates[name]; ok {
		return t, nil
	}
	return Template{}, fmt.Errorf("template %q: %w", name, ErrNotFound)
}

// CreateHost implements Service.
func (m *Memory) CreateHost(ctx context.Context, req HostCreate) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("host.create", req.Host)
	if err := m.CreateHostErr; err != nil {
		return "", err
	}
	if _, exists := m.hosts[req.Host]; exists {
		return "", &DuplicateError{Kind: "host", Name: req.Host}
	}
	id := m.newID()
	m.hosts[req.Host] = id
	return id, nil
}
