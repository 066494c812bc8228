package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultTimeout is the default per-call timeout for API requests.
var DefaultTimeout = 30 * time.Second

// Client talks to the inventory service's JSON-RPC 2.0 endpoint.
type Client struct {
	url    string
	token  string
	http   *http.Client
	nextID atomic.Int64
}

// NewClient creates a client for the given api_jsonrpc endpoint URL.
// The token is sent as a bearer token on every request.
func NewClient(url, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:   url,
		token: token,
		http:  &http.Client{Timeout: timeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

func (e *rpcError) Error() string {
	if e.Data != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Data)
	}
	return e.Message
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one JSON-RPC request and unmarshals the result into out.
func (c *Client) call(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json-rpc")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status %d", method, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("%s: %w", method, rpcResp.Error)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", method, err)
		}
	}
	return nil
}

// nameFilter builds the exact-name filter params used by the get methods.
func nameFilter(name string) map[string]any {
	return map[string]any{
		"filter": map[string]any{"name": []string{name}},
	}
}

// FindGroupByName implements Service.
func (c *Client) FindGroupByName(ctx context.Context, name string) (Group, error) {
	var groups []Group
	if err := c.call(ctx, "hostgroup.get", nameFilter(name), &groups); err != nil {
		return Group{}, err
	}
	if len(groups) == 0 {
		return Group{}, fmt.Errorf("group %q: %w", name, ErrNotFound)
	}
	return groups[0], nil
}

// CreateGroup implements Service.
func (c *Client) CreateGroup(ctx context.Context, name string) (Group, error) {
	var result struct {
		GroupIDs []string `json:"groupids"`
	}
	err := c.call(ctx, "hostgroup.create", map[string]any{"name": name}, &result)
	if err != nil {
		if isDuplicateErr(err) {
			return Group{}, &DuplicateError{Kind: "group", Name: name}
		}
		return Group{}, err
	}
	if len(result.GroupIDs) == 0 {
		return Group{}, fmt.Errorf("hostgroup.create: no id returned for %q", name)
	}
	return Group{ID: result.GroupIDs[0], Name: name}, nil
}

// FindProxyByName implements Service.
func (c *Client) FindProxyByName(ctx context.Context, name string) (Proxy, error) {
	var proxies []Proxy
	if err := c.call(ctx, "proxy.get", nameFilter(name), &proxies); err != nil {
		return Proxy{}, err
	}
	if len(proxies) == 0 {
		return Proxy{}, fmt.Errorf("proxy %q: %w", name, ErrNotFound)
	}
	return proxies[0], nil
}

// FindTemplateByName implements Service.
func (c *Client) FindTemplateByName(ctx context.Context, name string) (Template, error) {
	var templates []Template
	params := map[string]any{
		"filter": map[string]any{"host": []string{name}},
	}
	if err := c.call(ctx, "template.get", params, &templates); err != nil {
		return Template{}, err
	}
	if len(templates) == 0 {
		return Template{}, fmt.Errorf("template %q: %w", name, ErrNotFound)
	}
	return templates[0], nil
}

// CreateHost implements Service.
func (c *Client) CreateHost(ctx context.Context, req HostCreate) (string, error) {
	params := map[string]any{
		"host":   req.Host,
		"groups": idRefs("groupid", req.GroupIDs),
	}
	if req.Name != "" {
		params["name"] = req.Name
	}
	if req.Description != "" {
		params["description"] = req.Description
	}
	if req.ProxyID != "" {
		params["proxyid"] = req.ProxyID
	}
	if len(req.TemplateIDs) > 0 {
		params["templates"] = idRefs("templateid", req.TemplateIDs)
	}
	if len(req.Tags) > 0 {
		params["tags"] = req.Tags
	}
	if len(req.Interfaces) > 0 {
		ifaces := make([]map[string]any, 0, len(req.Interfaces))
		for _, iface := range req.Interfaces {
			ifaces = append(ifaces, interfaceParams(iface))
		}
		params["interfaces"] = ifaces
	}

	var result struct {
		HostIDs []string `json:"hostids"`
	}
	if err := c.call(ctx, "host.create", params, &result); err != nil {
		if isDuplicateErr(err) {
			return "", &DuplicateError{Kind: "host", Name: req.Host}
		}
		return "", err
	}
	if len(result.HostIDs) == 0 {
		return "", fmt.Errorf("host.create: no id returned for %q", req.Host)
	}
	return result.HostIDs[0], nil
}

// interfaceParams converts an Interface to the wire representation. The
// service expects useip as 0/1 and SNMP settings nested under details.
func interfaceParams(iface Interface) map[string]any {
	useIP := 0
	if iface.UseIP {
		useIP = 1
	}
	params := map[string]any{
		"type":  iface.Type,
		"main":  1,
		"useip": useIP,
		"ip":    iface.IP,
		"dns":   iface.DNS,
		"port":  iface.Port,
	}
	if iface.Type == InterfaceSNMP {
		params["details"] = map[string]any{
			"version":   iface.SNMPVersion,
			"community": iface.SNMPCommunity,
		}
	}
	return params
}

func idRefs(key string, ids []string) []map[string]string {
	refs := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, map[string]string{key: id})
	}
	return refs
}

// isDuplicateErr detects the service's duplicate-object rejection message.
func isDuplicateErr(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists")
}
