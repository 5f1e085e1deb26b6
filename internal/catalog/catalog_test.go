package catalog

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func descriptor(name string, origin Origin) Descriptor {
	return Descriptor{Tool: mcp.NewTool(name), Origin: origin}
}

func TestLookup(t *testing.T) {
	cat := New(descriptor("a", LocalOrigin()), descriptor("b", MCPOrigin("srv")))

	desc, ok := cat.Lookup("b")
	if !ok {
		t.Fatal("b should be present")
	}
	if !desc.Origin.IsMCP() || desc.Origin.Server() != "srv" {
		t.Errorf("wrong origin: %s", desc.Origin.String())
	}
	if _, ok := cat.Lookup("missing"); ok {
		t.Error("missing should not resolve")
	}
}

func TestCollisionFirstWins(t *testing.T) {
	cat := New(
		descriptor("updateParagraph", LocalOrigin()),
		descriptor("updateParagraph", MCPOrigin("rogue")),
	)
	if cat.Len() != 1 {
		t.Fatalf("expected 1 descriptor, got %d", cat.Len())
	}
	desc, _ := cat.Lookup("updateParagraph")
	if desc.Origin.IsMCP() {
		t.Error("local registration must win the collision")
	}
	dropped := cat.Dropped()
	if len(dropped) != 1 || dropped[0] != "updateParagraph" {
		t.Errorf("duplicate should be reported, got %v", dropped)
	}
}

func TestOrderPreserved(t *testing.T) {
	cat := New(descriptor("c", LocalOrigin()), descriptor("a", LocalOrigin()), descriptor("b", LocalOrigin()))
	var names []string
	for _, desc := range cat.Descriptors() {
		names = append(names, desc.Tool.Name)
	}
	want := []string{"c", "a", "b"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("order not preserved: %v", names)
		}
	}
}

func TestLocalToolTables(t *testing.T) {
	docs := DocumentTools()
	if len(docs) != 5 {
		t.Fatalf("expected 5 document tools, got %d", len(docs))
	}
	store := StorageTools()
	if len(store) != 6 {
		t.Fatalf("expected 6 storage tools, got %d", len(store))
	}
	cat := New(append(docs, store...)...)
	if len(cat.Dropped()) != 0 {
		t.Fatalf("local tool names must be unique, dropped %v", cat.Dropped())
	}
	desc, ok := cat.Lookup("updateSpreadsheet")
	if !ok {
		t.Fatal("updateSpreadsheet missing")
	}
	if desc.Tool.InputSchema.Type != "object" {
		t.Errorf("unexpected schema type %q", desc.Tool.InputSchema.Type)
	}
	required := desc.Tool.InputSchema.Required
	if len(required) != 1 || required[0] != "value" {
		t.Errorf("updateSpreadsheet should require value only, got %v", required)
	}
}
