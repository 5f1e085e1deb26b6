// Package catalog holds the merged tool registry: local document and
// storage tools plus tools loaded from workspace MCP servers, each
// tagged with its origin.
package catalog

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Origin records where a tool came from. The zero value is local.
type Origin struct {
	server string
	mcp    bool
}

func LocalOrigin() Origin { return Origin{} }

func MCPOrigin(server string) Origin { return Origin{server: server, mcp: true} }

func (o Origin) IsMCP() bool { return o.mcp }

// Server returns the MCP server name, or "" for local tools.
func (o Origin) Server() string { return o.server }

func (o Origin) String() string {
	if o.mcp {
		return "mcp:" + o.server
	}
	return "local"
}

// Descriptor pairs a tool definition with its origin. Name, description
// and the parameter schema live in the embedded mcp.Tool.
type Descriptor struct {
	Tool   mcp.Tool
	Origin Origin
}

// Catalog is an ordered, name-indexed set of descriptors.
type Catalog struct {
	descs   []Descriptor
	index   map[string]int
	dropped []string
}

// New builds a catalog preserving registration order. On a name
// collision the first registration wins; later duplicates are recorded
// and reported by Dropped so callers can log them.
func New(descs ...Descriptor) *Catalog {
	c := &Catalog{index: make(map[string]int, len(descs))}
	for _, d := range descs {
		if _, exists := c.index[d.Tool.Name]; exists {
			c.dropped = append(c.dropped, d.Tool.Name)
			continue
		}
		c.index[d.Tool.Name] = len(c.descs)
		c.descs = append(c.descs, d)
	}
	return c
}

func (c *Catalog) Lookup(name string) (Descriptor, bool) {
	i, ok := c.index[name]
	if !ok {
		return Descriptor{}, false
	}
	return c.descs[i], true
}

// Descriptors returns the catalog contents in registration order.
func (c *Catalog) Descriptors() []Descriptor {
	out := make([]Descriptor, len(c.descs))
	copy(out, c.descs)
	return out
}

func (c *Catalog) Len() int { return len(c.descs) }

// Dropped lists tool names discarded during construction because an
// earlier descriptor already claimed them.
func (c *Catalog) Dropped() []string { return c.dropped }
