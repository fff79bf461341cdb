/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package ops

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestRegistry_BasicRegistration(t *testing.T) {
	registry := NewRegistry()
	testCmd := &cobra.Command{Use: "generate", Short: "Generate manifests"}

	if err := registry.Register("generate", GroupManifest, testCmd, "Generate manifests"); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	cmd, exists := registry.GetCommand("generate")
	if !exists {
		t.Fatal("Expected command to exist after registration")
	}
	if cmd.Name != "generate" {
		t.Errorf("Expected command name 'generate', got '%s'", cmd.Name)
	}
	if cmd.Group != GroupManifest {
		t.Errorf("Expected command group 'manifest', got '%s'", cmd.Group)
	}
	if cmd.Command != testCmd {
		t.Error("Expected command object to match registered command")
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	registry := NewRegistry()
	c := &cobra.Command{Use: "types"}

	if err := registry.Register("types", GroupInspect, c, "List types"); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := registry.Register("types", GroupSupport, c, "again"); err == nil {
		t.Error("Expected duplicate registration to fail")
	}
	if got := registry.ListGroups()[GroupSupport]; got != 0 {
		t.Errorf("Expected no support commands after rejected duplicate, got %d", got)
	}
}

func TestRegistry_GetCommandsByGroupSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"types", "classify"} {
		if err := registry.Register(name, GroupInspect, &cobra.Command{Use: name}, name); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	if err := registry.Register("version", GroupSupport, &cobra.Command{Use: "version"}, "version"); err != nil {
		t.Fatal(err)
	}

	inspect := registry.GetCommandsByGroup(GroupInspect)
	if len(inspect) != 2 {
		t.Fatalf("Expected 2 inspect commands, got %d", len(inspect))
	}
	if inspect[0].Name != "classify" || inspect[1].Name != "types" {
		t.Errorf("Expected sorted names, got %s, %s", inspect[0].Name, inspect[1].Name)
	}

	// The returned slice is a copy.
	inspect[0] = nil
	if registry.GetCommandsByGroup(GroupInspect)[0] == nil {
		t.Error("GetCommandsByGroup leaked internal slice")
	}

	if n := len(registry.GetCommandsByGroup(GroupManifest)); n != 0 {
		t.Errorf("Expected empty manifest group, got %d", n)
	}
	if n := len(registry.GetAllCommands()); n != 3 {
		t.Errorf("Expected 3 commands, got %d", n)
	}
}

func TestGroupTitles(t *testing.T) {
	for _, g := range Groups {
		if g.Title() == string(g) {
			t.Errorf("group %s has no title", g)
		}
	}
	if CommandGroup("other").Title() != "other" {
		t.Error("unknown groups should fall back to their name")
	}
}

func TestGlobalRegistry(t *testing.T) {
	if GetRegistry() != GetRegistry() {
		t.Error("GetRegistry should return the same instance")
	}
}
