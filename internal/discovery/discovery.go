// Package discovery browses the local network for MCP servers that
// announce themselves over mDNS.
package discovery

import (
	"fmt"
	"strings"
)

// ServiceType is the mDNS service type MCP servers announce under.
const ServiceType = "_mcp._tcp"

// ServiceInfo describes a discovered MCP server.
type ServiceInfo struct {
	InstanceName string // unique instance name, used as the server name
	Host         string // hostname or IP address
	Port         int
	Note         string // human-readable description
	Endpoint     string // HTTP endpoint path, e.g. "/mcp"
	TLS          bool
}

// URL returns the streamable HTTP endpoint for the service.
func (s ServiceInfo) URL() string {
	scheme := "http"
	if s.TLS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d%s", scheme, s.Host, s.Port, s.Endpoint)
}

// sanitizeInstanceName makes an mDNS instance name usable as a server
// name: lowercase alphanumerics and hyphens only.
func sanitizeInstanceName(name string) string {
	name = strings.ReplaceAll(name, "\\", "")
	name = strings.ReplaceAll(name, ".", "-")
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ToLower(name)
	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			result.WriteRune(r)
		}
	}
	return strings.Trim(result.String(), "-")
}
