package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestParseServiceEntry(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:   "Lab Server._mcp._tcp.local.",
		AddrV4: net.ParseIP("10.0.0.5"),
		Port:   9000,
		InfoFields: []string{
			"endpoint=/tools/mcp",
			"tls=true",
			"note=lab tooling",
		},
	}
	info, ok := parseServiceEntry(entry)
	if !ok {
		t.Fatal("entry should parse")
	}
	if info.InstanceName != "lab-server" {
		t.Errorf("instance name %q", info.InstanceName)
	}
	if info.URL() != "https://10.0.0.5:9000/tools/mcp" {
		t.Errorf("url %q", info.URL())
	}
	if info.Note != "lab tooling" {
		t.Errorf("note %q", info.Note)
	}
}

func TestParseServiceEntryDefaults(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name: "agent._mcp._tcp.local.",
		Host: "agent.local.",
		Port: 8800,
	}
	info, ok := parseServiceEntry(entry)
	if !ok {
		t.Fatal("entry should parse")
	}
	if info.Endpoint != "/mcp" {
		t.Errorf("endpoint default missing, got %q", info.Endpoint)
	}
	if info.URL() != "http://agent.local:8800/mcp" {
		t.Errorf("url %q", info.URL())
	}
}

func TestParseServiceEntryWithoutHost(t *testing.T) {
	if _, ok := parseServiceEntry(&mdns.ServiceEntry{Name: "x._mcp._tcp.local."}); ok {
		t.Fatal("entry without a host must be skipped")
	}
}
