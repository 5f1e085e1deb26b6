package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/oapilot/agent-engine/internal/catalog"
	"github.com/oapilot/agent-engine/internal/editor"
	"github.com/oapilot/agent-engine/internal/mcpclient"
	"github.com/oapilot/agent-engine/internal/storage"
)

// Call is one tool invocation requested by the model.
type Call struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// Dispatcher owns the current tool catalog and executes calls against
// it. The catalog, the MCP session clients and the editor handle are
// swappable at runtime (tool reload, document open/close); execution
// itself is serialized by the agent loop.
type Dispatcher struct {
	storage   *storage.Client
	bridge    *editor.Bridge
	workspace string
	logger    *slog.Logger

	mu      sync.RWMutex
	catalog *catalog.Catalog
	clients map[string]*mcpclient.Client
	handle  editor.Handle
	schemas map[string]*jsonschema.Schema
}

func New(store *storage.Client, bridge *editor.Bridge, workspace string, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		storage:   store,
		bridge:    bridge,
		workspace: workspace,
		logger:    logger,
		catalog:   catalog.New(),
		clients:   map[string]*mcpclient.Client{},
		schemas:   map[string]*jsonschema.Schema{},
	}
}

// SetTools swaps in a freshly merged catalog and its session clients.
func (d *Dispatcher) SetTools(cat *catalog.Catalog, clients map[string]*mcpclient.Client) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catalog = cat
	if clients == nil {
		clients = map[string]*mcpclient.Client{}
	}
	d.clients = clients
	d.schemas = map[string]*jsonschema.Schema{}
}

// SetEditorHandle attaches or detaches the document editor.
func (d *Dispatcher) SetEditorHandle(h editor.Handle) {
	d.mu.Lock()
	d.handle = h
	d.mu.Unlock()
}

// Descriptors returns the current catalog contents.
func (d *Dispatcher) Descriptors() []catalog.Descriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.catalog.Descriptors()
}

// Execute runs one tool call. An unknown name, a schema violation or an
// executor failure all come back as a failed Result; nothing is invoked
// before the arguments pass validation.
func (d *Dispatcher) Execute(ctx context.Context, call Call) Result {
	d.mu.RLock()
	desc, ok := d.catalog.Lookup(call.Name)
	d.mu.RUnlock()
	if !ok {
		d.logger.Warn("unknown tool requested", "tool", call.Name)
		return Failf("unknown tool: %s", call.Name)
	}
	if err := d.validateArguments(desc, call.Arguments); err != nil {
		return Failf("arguments for %s rejected: %v", call.Name, err)
	}
	d.logger.Debug("executing tool", "tool", call.Name, "origin", desc.Origin.String(), "call_id", call.ID)
	if desc.Origin.IsMCP() {
		return d.execMCPTool(ctx, desc, call)
	}
	if isDocumentTool(call.Name) {
		return d.execDocumentTool(ctx, call.Name, call.Arguments)
	}
	return d.execStorageTool(ctx, call.Name, call.Arguments)
}

func (d *Dispatcher) execMCPTool(ctx context.Context, desc catalog.Descriptor, call Call) Result {
	d.mu.RLock()
	client := d.clients[desc.Origin.Server()]
	d.mu.RUnlock()
	if client == nil {
		return Failf("no session for MCP server %s", desc.Origin.Server())
	}
	raw, err := client.CallTool(ctx, call.Name, call.Arguments)
	if err != nil {
		return Fail(err)
	}
	var data any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			return Failf("malformed result from MCP server %s: %v", desc.Origin.Server(), err)
		}
	}
	return OK(data, fmt.Sprintf("Executed MCP tool %s on %s", call.Name, desc.Origin.Server()))
}
