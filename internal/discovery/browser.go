package discovery

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// Discover browses the LAN for MCP services and returns them sorted by
// instance name so callers see a deterministic order.
func Discover(ctx context.Context, timeout time.Duration) ([]ServiceInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan struct{})
	var services []ServiceInfo
	go func() {
		defer close(done)
		for entry := range entries {
			if info, ok := parseServiceEntry(entry); ok {
				services = append(services, info)
			}
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout

	// Query blocks until the timeout elapses.
	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return nil, fmt.Errorf("mdns query: %w", err)
	}

	sort.Slice(services, func(i, j int) bool {
		return services[i].InstanceName < services[j].InstanceName
	})
	return services, nil
}

// parseServiceEntry converts an mDNS entry into a ServiceInfo. Entries
// without a usable host or instance name are skipped.
func parseServiceEntry(entry *mdns.ServiceEntry) (ServiceInfo, bool) {
	if entry == nil {
		return ServiceInfo{}, false
	}

	info := ServiceInfo{Port: entry.Port, Endpoint: "/mcp"}

	switch {
	case entry.AddrV4 != nil:
		info.Host = entry.AddrV4.String()
	case entry.AddrV6 != nil:
		info.Host = entry.AddrV6.String()
	case entry.Host != "":
		info.Host = strings.TrimSuffix(entry.Host, ".")
	default:
		return ServiceInfo{}, false
	}

	for _, txt := range entry.InfoFields {
		if val, ok := strings.CutPrefix(txt, "endpoint="); ok {
			info.Endpoint = val
		} else if val, ok := strings.CutPrefix(txt, "tls="); ok {
			info.TLS = val == "true"
		} else if val, ok := strings.CutPrefix(txt, "note="); ok {
			info.Note = val
		}
	}

	// Entry names look like "instance._mcp._tcp.local.".
	name := entry.Name
	if instance, _, found := strings.Cut(name, "."); found && instance != "" {
		name = instance
	}
	info.InstanceName = sanitizeInstanceName(name)
	if info.InstanceName == "" {
		return ServiceInfo{}, false
	}
	return info, true
}
