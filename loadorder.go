package loadorder

import (
	"sort"
	"strings"

	"github.com/dshills/loadorder/game"
	"github.com/dshills/loadorder/plugin"
)

// MaxActivePlugins is the ceiling on simultaneously active plugins.
const MaxActivePlugins = 255

// LoadOrder is the capability surface shared by load-order persistence
// strategies.
type LoadOrder interface {
	// GameSettings returns the game this load order belongs to.
	GameSettings() *game.Settings

	// PluginNames returns the plugin names in load order.
	PluginNames() []string

	// IndexOf returns the position of the named plugin, if present.
	IndexOf(pluginName string) (int, bool)

	// PluginAt returns the name of the plugin at the given position.
	PluginAt(index int) (string, bool)

	// ActivePluginNames returns the active plugins in load order.
	ActivePluginNames() []string

	// IsActive reports whether the named plugin is present and active.
	IsActive(pluginName string) bool

	// Load replaces the in-memory state from disk.
	Load() error

	// Save projects the in-memory state onto disk.
	Save() error

	// SetLoadOrder replaces the order with the given plugins.
	SetLoadOrder(pluginNames []string) error

	// SetPluginIndex moves or inserts a plugin at the given position.
	SetPluginIndex(pluginName string, index int) error

	// SetActivePlugins replaces the active set with the given plugins.
	SetActivePlugins(pluginNames []string) error

	// Activate flags the named plugin for loading.
	Activate(pluginName string) error

	// Deactivate clears the named plugin's active flag.
	Deactivate(pluginName string) error

	// InsertPosition returns the strategy's preferred position for a
	// plugin not yet in the order, or false if it has no preference.
	InsertPosition(p *plugin.Plugin) (int, bool)

	// IsSelfConsistent reports whether the strategy's persisted state
	// agrees with itself.
	IsSelfConsistent() (bool, error)
}

// mutableLoadOrder is what the generic mutation machinery needs from a
// strategy.
type mutableLoadOrder interface {
	GameSettings() *game.Settings
	InsertPosition(p *plugin.Plugin) (int, bool)
	pluginList() []*plugin.Plugin
	setPluginList(plugins []*plugin.Plugin)
}

// base holds the in-memory state common to strategies.
type base struct {
	settings *game.Settings
	plugins  []*plugin.Plugin
}

// GameSettings returns the game this load order belongs to.
func (b *base) GameSettings() *game.Settings {
	return b.settings
}

func (b *base) pluginList() []*plugin.Plugin {
	return b.plugins
}

func (b *base) setPluginList(plugins []*plugin.Plugin) {
	b.plugins = plugins
}

// PluginNames returns the plugin names in load order.
func (b *base) PluginNames() []string {
	names := make([]string, len(b.plugins))
	for i, p := range b.plugins {
		names[i] = p.Name()
	}
	return names
}

// IndexOf returns the position of the named plugin, if present.
func (b *base) IndexOf(pluginName string) (int, bool) {
	return indexOf(b.plugins, pluginName)
}

// PluginAt returns the name of the plugin at the given position.
func (b *base) PluginAt(index int) (string, bool) {
	if index < 0 || index >= len(b.plugins) {
		return "", false
	}
	return b.plugins[index].Name(), true
}

// ActivePluginNames returns the active plugins in load order.
func (b *base) ActivePluginNames() []string {
	var names []string
	for _, p := range b.plugins {
		if p.IsActive() {
			names = append(names, p.Name())
		}
	}
	return names
}

// IsActive reports whether the named plugin is present and active.
func (b *base) IsActive(pluginName string) bool {
	i, ok := indexOf(b.plugins, pluginName)
	return ok && b.plugins[i].IsActive()
}

func indexOf(plugins []*plugin.Plugin, pluginName string) (int, bool) {
	for i, p := range plugins {
		if plugin.NamesEqual(p.Name(), pluginName) {
			return i, true
		}
	}
	return 0, false
}

// firstNonMasterIndex returns the index of the first non-master entry,
// or len(plugins) if every entry is a master.
func firstNonMasterIndex(plugins []*plugin.Plugin) int {
	for i, p := range plugins {
		if !p.IsMasterFile() {
			return i
		}
	}
	return len(plugins)
}

func countActive(plugins []*plugin.Plugin) int {
	n := 0
	for _, p := range plugins {
		if p.IsActive() {
			n++
		}
	}
	return n
}

// sortPlugins orders plugins canonically: masters before non-masters,
// then ascending modification time, ties broken by case-insensitive
// name.
func sortPlugins(plugins []*plugin.Plugin) {
	sort.SliceStable(plugins, func(i, j int) bool {
		a, b := plugins[i], plugins[j]
		if a.IsMasterFile() != b.IsMasterFile() {
			return a.IsMasterFile()
		}
		if !a.ModificationTime().Equal(b.ModificationTime()) {
			return a.ModificationTime().Before(b.ModificationTime())
		}
		return strings.ToLower(a.Name()) < strings.ToLower(b.Name())
	})
}
