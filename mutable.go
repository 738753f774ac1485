package loadorder

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dshills/loadorder/plugin"
)

// The functions in this file are the strategy-agnostic mutation
// machinery. They validate before committing: a returned error leaves
// the load order untouched.

// activate flags the named plugin, inserting it at the strategy's
// preferred position if it is installed but not yet in the order.
func activate(lo mutableLoadOrder, pluginName string) error {
	plugins := lo.pluginList()
	i, found := indexOf(plugins, pluginName)

	if countActive(plugins) >= MaxActivePlugins && (!found || !plugins[i].IsActive()) {
		return fmt.Errorf("%w: cannot activate %q", ErrTooManyActivePlugins, pluginName)
	}

	if !found {
		p, err := plugin.New(pluginName, lo.GameSettings())
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidPlugin, pluginName, err)
		}
		i = addToLoadOrder(lo, p)
	}
	lo.pluginList()[i].Activate()
	return nil
}

// deactivate clears the named plugin's active flag. Implicitly active
// plugins cannot be deactivated.
func deactivate(lo mutableLoadOrder, pluginName string) error {
	if lo.GameSettings().IsImplicitlyActive(pluginName) {
		return fmt.Errorf("%w: cannot deactivate %q", ErrImplicitlyActive, pluginName)
	}

	i, found := indexOf(lo.pluginList(), pluginName)
	if !found {
		return fmt.Errorf("%w: %q", ErrPluginNotFound, pluginName)
	}
	lo.pluginList()[i].Deactivate()
	return nil
}

// setActivePlugins replaces the active set. Every name must be in the
// order or installed, every installed implicitly active plugin must be
// named, and the set must fit the activation ceiling.
func setActivePlugins(lo mutableLoadOrder, pluginNames []string) error {
	if len(pluginNames) > MaxActivePlugins {
		return fmt.Errorf("%w: %d requested", ErrTooManyActivePlugins, len(pluginNames))
	}

	settings := lo.GameSettings()
	for _, name := range settings.ImplicitlyActivePlugins() {
		if _, err := plugin.New(name, settings); err != nil {
			continue // not installed
		}
		if !containsName(pluginNames, name) {
			return fmt.Errorf("%w: %q must be active", ErrImplicitlyActive, name)
		}
	}

	created := make(map[string]*plugin.Plugin)
	for _, name := range pluginNames {
		if _, found := indexOf(lo.pluginList(), name); found {
			continue
		}
		p, err := plugin.New(name, settings)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidPlugin, name, err)
		}
		created[strings.ToLower(name)] = p
	}

	for _, p := range lo.pluginList() {
		p.Deactivate()
	}
	for _, name := range pluginNames {
		i, found := indexOf(lo.pluginList(), name)
		if !found {
			i = addToLoadOrder(lo, created[strings.ToLower(name)])
		}
		lo.pluginList()[i].Activate()
	}
	return nil
}

// replacePlugins swaps the whole order for the named plugins, reusing
// existing entries (and their active state) where names match.
func replacePlugins(lo mutableLoadOrder, pluginNames []string) error {
	seen := make(map[string]struct{}, len(pluginNames))
	plugins := make([]*plugin.Plugin, 0, len(pluginNames))
	for _, name := range pluginNames {
		lower := strings.ToLower(name)
		if _, dup := seen[lower]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicatePlugin, name)
		}
		seen[lower] = struct{}{}

		p, err := pluginObject(lo, name)
		if err != nil {
			return err
		}
		plugins = append(plugins, p)
	}

	if err := validateMastersFirst(plugins); err != nil {
		return err
	}

	lo.setPluginList(plugins)
	return nil
}

// moveOrInsertPlugin places the named plugin at the given position,
// inserting it if absent. Positions past the end are clamped.
func moveOrInsertPlugin(lo mutableLoadOrder, pluginName string, position int) error {
	plugins := lo.pluginList()
	current, exists := indexOf(plugins, pluginName)
	if exists && current == position {
		return nil
	}

	p, err := pluginObject(lo, pluginName)
	if err != nil {
		return err
	}

	partition := firstNonMasterIndex(plugins)
	if !p.IsMasterFile() && position < partition {
		return fmt.Errorf("%w: cannot move %q before masters", ErrUnorderedMasters, pluginName)
	}
	if p.IsMasterFile() && partition != len(plugins) {
		if position > partition ||
			(exists && current < partition && position == partition) {
			return fmt.Errorf("%w: cannot move %q after non-masters", ErrUnorderedMasters, pluginName)
		}
	}

	if exists {
		plugins = slices.Delete(plugins, current, current+1)
	}
	if position > len(plugins) {
		position = len(plugins)
	}
	lo.setPluginList(slices.Insert(plugins, position, p))
	return nil
}

// addToLoadOrder inserts a plugin not yet in the order at the
// strategy's preferred position, or appends it, and returns its index.
func addToLoadOrder(lo mutableLoadOrder, p *plugin.Plugin) int {
	plugins := lo.pluginList()
	position, ok := lo.InsertPosition(p)
	if !ok || position > len(plugins) {
		position = len(plugins)
	}
	lo.setPluginList(slices.Insert(plugins, position, p))
	return position
}

// addImplicitlyActivePlugins force-activates the game's always-loaded
// plugins, inserting any that are installed but not in the order.
func addImplicitlyActivePlugins(lo mutableLoadOrder) {
	settings := lo.GameSettings()
	for _, name := range settings.ImplicitlyActivePlugins() {
		i, found := indexOf(lo.pluginList(), name)
		if !found {
			p, err := plugin.New(name, settings)
			if err != nil {
				continue // not installed
			}
			i = addToLoadOrder(lo, p)
		}
		lo.pluginList()[i].Activate()
	}
}

// deactivateExcessPlugins trims the active set down to the ceiling,
// dropping from the end of the order and sparing implicitly active
// plugins.
func deactivateExcessPlugins(lo mutableLoadOrder) {
	plugins := lo.pluginList()
	settings := lo.GameSettings()
	active := countActive(plugins)
	for i := len(plugins) - 1; i >= 0 && active > MaxActivePlugins; i-- {
		if plugins[i].IsActive() && !settings.IsImplicitlyActive(plugins[i].Name()) {
			plugins[i].Deactivate()
			active--
		}
	}
}

// pluginObject returns the existing entry for a name, or constructs a
// validated Plugin for it.
func pluginObject(lo mutableLoadOrder, pluginName string) (*plugin.Plugin, error) {
	if i, found := indexOf(lo.pluginList(), pluginName); found {
		return lo.pluginList()[i], nil
	}
	p, err := plugin.New(pluginName, lo.GameSettings())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPlugin, pluginName, err)
	}
	return p, nil
}

func validateMastersFirst(plugins []*plugin.Plugin) error {
	nonMasterSeen := false
	for _, p := range plugins {
		if p.IsMasterFile() && nonMasterSeen {
			return fmt.Errorf("%w: %q", ErrUnorderedMasters, p.Name())
		}
		if !p.IsMasterFile() {
			nonMasterSeen = true
		}
	}
	return nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if plugin.NamesEqual(n, name) {
			return true
		}
	}
	return false
}
