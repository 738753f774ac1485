package loadorder

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/dshills/loadorder/game"
)

func TestSetLoadOrderRejectsDuplicates(t *testing.T) {
	f := prepare(t, game.Morrowind)
	before := f.lo.PluginNames()

	err := f.lo.SetLoadOrder([]string{"Blank.esp", "blank.esp"})
	if !errors.Is(err, ErrDuplicatePlugin) {
		t.Fatalf("SetLoadOrder() error = %v, want ErrDuplicatePlugin", err)
	}
	if got := f.lo.PluginNames(); !slices.Equal(got, before) {
		t.Errorf("rejected SetLoadOrder() changed state: %v", got)
	}
}

func TestSetLoadOrderRejectsInvalidPlugin(t *testing.T) {
	f := prepare(t, game.Morrowind)
	before := f.lo.PluginNames()

	err := f.lo.SetLoadOrder([]string{"Blank.esp", "missing.esp"})
	if !errors.Is(err, ErrInvalidPlugin) {
		t.Fatalf("SetLoadOrder() error = %v, want ErrInvalidPlugin", err)
	}
	if got := f.lo.PluginNames(); !slices.Equal(got, before) {
		t.Errorf("rejected SetLoadOrder() changed state: %v", got)
	}
}

func TestSetLoadOrderRejectsMastersAfterNonMasters(t *testing.T) {
	f := prepare(t, game.Morrowind)
	before := f.lo.PluginNames()

	err := f.lo.SetLoadOrder([]string{"Blank.esp", "Blank.esm"})
	if !errors.Is(err, ErrUnorderedMasters) {
		t.Fatalf("SetLoadOrder() error = %v, want ErrUnorderedMasters", err)
	}
	if got := f.lo.PluginNames(); !slices.Equal(got, before) {
		t.Errorf("rejected SetLoadOrder() changed state: %v", got)
	}
}

func TestSetLoadOrderIgnoresGhostSuffix(t *testing.T) {
	f := prepare(t, game.Morrowind)
	installPlugin(t, f.settings, "ghosted.esm.ghost", true)

	names := []string{
		"Morrowind.esm",
		"Blank.esm",
		"ghosted.esm",
		"Blank.esp",
		"Blank - Master Dependent.esp",
		"Blank - Different.esp",
		"Blàñk.esp",
	}
	if err := f.lo.SetLoadOrder(names); err != nil {
		t.Errorf("SetLoadOrder() error = %v", err)
	}
}

func TestSetLoadOrderDoesNotInsertMissingPlugins(t *testing.T) {
	f := prepare(t, game.Morrowind)

	names := []string{
		"Blank.esm",
		"Blank.esp",
		"Blank - Master Dependent.esp",
		"Blank - Different.esp",
	}
	if err := f.lo.SetLoadOrder(names); err != nil {
		t.Fatalf("SetLoadOrder() error = %v", err)
	}
	if got := f.lo.PluginNames(); !slices.Equal(got, names) {
		t.Errorf("PluginNames() = %v, want %v", got, names)
	}
}

func TestSetLoadOrderKeepsActiveState(t *testing.T) {
	f := prepare(t, game.Morrowind)

	names := []string{
		"Blank.esm",
		"Blank.esp",
		"Blank - Master Dependent.esp",
		"Blank - Different.esp",
	}
	if err := f.lo.SetLoadOrder(names); err != nil {
		t.Fatalf("SetLoadOrder() error = %v", err)
	}
	if !f.lo.IsActive("Blank.esp") {
		t.Error("SetLoadOrder() lost the active state of an existing plugin")
	}
}

func TestSetPluginIndexRejectsNonMasterBeforeMaster(t *testing.T) {
	f := prepare(t, game.Morrowind)
	before := f.lo.PluginNames()

	for _, name := range []string{"Blank - Master Dependent.esp", "Blank.esp"} {
		if err := f.lo.SetPluginIndex(name, 0); !errors.Is(err, ErrUnorderedMasters) {
			t.Errorf("SetPluginIndex(%q, 0) error = %v, want ErrUnorderedMasters", name, err)
		}
	}
	if got := f.lo.PluginNames(); !slices.Equal(got, before) {
		t.Errorf("rejected SetPluginIndex() changed state: %v", got)
	}
}

func TestSetPluginIndexRejectsMasterAfterNonMaster(t *testing.T) {
	f := prepare(t, game.Morrowind)
	before := f.lo.PluginNames()

	for _, name := range []string{"Blank.esm", "Morrowind.esm"} {
		if err := f.lo.SetPluginIndex(name, 2); !errors.Is(err, ErrUnorderedMasters) {
			t.Errorf("SetPluginIndex(%q, 2) error = %v, want ErrUnorderedMasters", name, err)
		}
	}
	if got := f.lo.PluginNames(); !slices.Equal(got, before) {
		t.Errorf("rejected SetPluginIndex() changed state: %v", got)
	}
}

func TestSetPluginIndexRejectsUnknownPlugin(t *testing.T) {
	f := prepare(t, game.Morrowind)

	if err := f.lo.SetPluginIndex("missing.esm", 0); !errors.Is(err, ErrInvalidPlugin) {
		t.Errorf("SetPluginIndex() error = %v, want ErrInvalidPlugin", err)
	}
}

func TestSetPluginIndexInsertsNewPlugin(t *testing.T) {
	f := prepare(t, game.Morrowind)
	before := len(f.lo.pluginList())

	if err := f.lo.SetPluginIndex("Blank.esm", 1); err != nil {
		t.Fatalf("SetPluginIndex() error = %v", err)
	}
	if i, _ := f.lo.IndexOf("Blank.esm"); i != 1 {
		t.Errorf("IndexOf() = %d, want 1", i)
	}
	if got := len(f.lo.pluginList()); got != before+1 {
		t.Errorf("plugin count = %d, want %d", got, before+1)
	}
}

func TestSetPluginIndexMovesExistingPlugin(t *testing.T) {
	f := prepare(t, game.Morrowind)

	if err := f.lo.SetPluginIndex("Blank - Master Dependent.esp", 2); err != nil {
		t.Fatalf("inserting: SetPluginIndex() error = %v", err)
	}
	count := len(f.lo.pluginList())

	if err := f.lo.SetPluginIndex("Blank.esp", 2); err != nil {
		t.Fatalf("moving: SetPluginIndex() error = %v", err)
	}
	if i, _ := f.lo.IndexOf("Blank.esp"); i != 2 {
		t.Errorf("IndexOf() = %d, want 2", i)
	}
	if got := len(f.lo.pluginList()); got != count {
		t.Errorf("plugin count = %d, want %d", got, count)
	}
	if !f.lo.IsActive("Blank.esp") {
		t.Error("SetPluginIndex() lost the active state of a moved plugin")
	}
	if f.lo.IsActive("Blank - Master Dependent.esp") {
		t.Error("SetPluginIndex() activated an inserted plugin")
	}
}

func TestSetPluginIndexMovesMasterInAllMasterOrder(t *testing.T) {
	f := prepare(t, game.Morrowind)

	if err := f.lo.SetLoadOrder([]string{"Morrowind.esm", "Blank.esm"}); err != nil {
		t.Fatalf("SetLoadOrder() error = %v", err)
	}

	// With no non-masters present any permutation keeps masters first,
	// so moving a master to the end must succeed.
	if err := f.lo.SetPluginIndex("Morrowind.esm", 2); err != nil {
		t.Fatalf("SetPluginIndex() error = %v", err)
	}

	want := []string{"Blank.esm", "Morrowind.esm"}
	if got := f.lo.PluginNames(); !slices.Equal(got, want) {
		t.Errorf("PluginNames() = %v, want %v", got, want)
	}
}

func TestActivateMarksPlugin(t *testing.T) {
	f := prepare(t, game.Oblivion)

	if err := f.lo.Activate("Blank - Different.esp"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if !f.lo.IsActive("Blank - Different.esp") {
		t.Error("Activate() did not mark the plugin active")
	}
}

func TestActivateInsertsMasterBeforeNonMasters(t *testing.T) {
	f := prepare(t, game.Oblivion)

	if err := f.lo.Activate("Blank.esm"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if i, _ := f.lo.IndexOf("Blank.esm"); i != 1 {
		t.Errorf("IndexOf() = %d, want 1 (before the first non-master)", i)
	}
	if !f.lo.IsActive("Blank.esm") {
		t.Error("Activate() did not mark the inserted plugin active")
	}
}

func TestActivateRejectsInvalidPlugin(t *testing.T) {
	f := prepare(t, game.Oblivion)

	if err := f.lo.Activate("missing.esp"); !errors.Is(err, ErrInvalidPlugin) {
		t.Errorf("Activate() error = %v, want ErrInvalidPlugin", err)
	}
}

func TestActivateRejectsExcessActivation(t *testing.T) {
	f := prepare(t, game.Oblivion)

	plugins := f.lo.pluginList()
	for i := 0; i < MaxActivePlugins+5; i++ {
		name := fmt.Sprintf("Blank%d.esm", i)
		installPlugin(t, f.settings, name, true)
		p := mustPlugin(t, f.settings, name)
		if i < MaxActivePlugins {
			p.Activate()
		}
		plugins = append(plugins, p)
	}
	plugins[1].Deactivate() // Blank.esp from the fixture
	f.lo.setPluginList(plugins)

	err := f.lo.Activate(fmt.Sprintf("Blank%d.esm", MaxActivePlugins))
	if !errors.Is(err, ErrTooManyActivePlugins) {
		t.Fatalf("Activate() error = %v, want ErrTooManyActivePlugins", err)
	}

	// Re-activating an already-active plugin is still fine at the cap.
	if err := f.lo.Activate("Blank0.esm"); err != nil {
		t.Errorf("Activate() on an active plugin error = %v", err)
	}
}

func TestDeactivateClearsPlugin(t *testing.T) {
	f := prepare(t, game.Oblivion)

	if err := f.lo.Deactivate("Blank.esp"); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	if f.lo.IsActive("Blank.esp") {
		t.Error("Deactivate() left the plugin active")
	}
}

func TestDeactivateRejectsUnknownPlugin(t *testing.T) {
	f := prepare(t, game.Oblivion)

	if err := f.lo.Deactivate("missing.esp"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Deactivate() error = %v, want ErrPluginNotFound", err)
	}
}

func TestDeactivateRejectsImplicitlyActivePlugin(t *testing.T) {
	f := prepare(t, game.Skyrim)

	err := f.lo.Deactivate(f.settings.MasterFile())
	if !errors.Is(err, ErrImplicitlyActive) {
		t.Errorf("Deactivate() error = %v, want ErrImplicitlyActive", err)
	}
}

func TestSetActivePluginsReplacesActiveSet(t *testing.T) {
	f := prepare(t, game.Oblivion)

	if err := f.lo.SetActivePlugins([]string{"Blank - Different.esp"}); err != nil {
		t.Fatalf("SetActivePlugins() error = %v", err)
	}
	if f.lo.IsActive("Blank.esp") {
		t.Error("SetActivePlugins() left a previously active plugin active")
	}
	if !f.lo.IsActive("Blank - Different.esp") {
		t.Error("SetActivePlugins() did not activate a requested plugin")
	}
}

func TestSetActivePluginsRejectsTooMany(t *testing.T) {
	f := prepare(t, game.Oblivion)

	names := make([]string, MaxActivePlugins+1)
	for i := range names {
		names[i] = fmt.Sprintf("Blank%d.esm", i)
	}
	err := f.lo.SetActivePlugins(names)
	if !errors.Is(err, ErrTooManyActivePlugins) {
		t.Errorf("SetActivePlugins() error = %v, want ErrTooManyActivePlugins", err)
	}
}

func TestSetActivePluginsRejectsInvalidPlugin(t *testing.T) {
	f := prepare(t, game.Oblivion)
	wasActive := f.lo.IsActive("Blank.esp")

	err := f.lo.SetActivePlugins([]string{"Blank.esp", "missing.esp"})
	if !errors.Is(err, ErrInvalidPlugin) {
		t.Fatalf("SetActivePlugins() error = %v, want ErrInvalidPlugin", err)
	}
	if f.lo.IsActive("Blank.esp") != wasActive {
		t.Error("rejected SetActivePlugins() changed active state")
	}
}

func TestSetActivePluginsRequiresImplicitlyActivePlugins(t *testing.T) {
	f := prepare(t, game.Skyrim)

	err := f.lo.SetActivePlugins([]string{"Blank.esp"})
	if !errors.Is(err, ErrImplicitlyActive) {
		t.Errorf("SetActivePlugins() error = %v, want ErrImplicitlyActive", err)
	}

	if err := f.lo.SetActivePlugins([]string{f.settings.MasterFile(), "Blank.esp"}); err != nil {
		t.Errorf("SetActivePlugins() with master listed error = %v", err)
	}
}
