package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dshills/loadorder/game"
)

const ghostSuffix = ".ghost"

// Plugin is one installed plugin file. Identity and the master-file
// flag are fixed at construction; the modification time and active
// flag are mutable.
type Plugin struct {
	name       string
	pluginsDir string
	masterFile bool
	modTime    time.Time
	active     bool
}

// New validates the named file in the game's plugins directory and
// returns a Plugin for it. The filename may carry a trailing carriage
// return or a ".ghost" suffix; neither is part of the plugin's
// identity. New fails if the file has the wrong extension, does not
// exist in either plain or ghosted form, or has an unreadable header.
func New(filename string, settings *game.Settings) (*Plugin, error) {
	name := strings.TrimSuffix(filename, "\r")
	if hasSuffixFold(name, ghostSuffix) {
		name = name[:len(name)-len(ghostSuffix)]
	}

	if !hasSuffixFold(name, ".esm") && !hasSuffixFold(name, ".esp") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExtension, name)
	}

	p := &Plugin{
		name:       name,
		pluginsDir: settings.PluginsDirectory(),
	}

	path, err := p.resolve()
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	p.modTime = info.ModTime()

	flags, err := readHeaderFlags(path, settings.ID())
	if err != nil {
		return nil, err
	}
	if settings.ID() == game.Morrowind {
		p.masterFile = hasSuffixFold(name, ".esm")
	} else {
		p.masterFile = flags&recordFlagMaster != 0
	}

	return p, nil
}

// Name returns the plugin's filename, without any ghost suffix.
func (p *Plugin) Name() string {
	return p.name
}

// NamesEqual reports whether two plugin filenames denote the same
// plugin. Comparison is Unicode case-insensitive.
func NamesEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}

// IsMasterFile reports whether the plugin is flagged as a master.
func (p *Plugin) IsMasterFile() bool {
	return p.masterFile
}

// ModificationTime returns the plugin file's modification time as of
// construction or the last successful SetModificationTime.
func (p *Plugin) ModificationTime() time.Time {
	return p.modTime
}

// SetModificationTime writes the given modification time to the
// plugin's file and records it.
func (p *Plugin) SetModificationTime(t time.Time) error {
	path, err := p.resolve()
	if err != nil {
		return err
	}
	if err := os.Chtimes(path, t, t); err != nil {
		return fmt.Errorf("setting modification time of %s: %w", p.name, err)
	}
	p.modTime = t
	return nil
}

// IsActive reports whether the plugin is flagged for loading.
func (p *Plugin) IsActive() bool {
	return p.active
}

// Activate flags the plugin for loading.
func (p *Plugin) Activate() {
	p.active = true
}

// Deactivate clears the plugin's active flag.
func (p *Plugin) Deactivate() {
	p.active = false
}

// resolve returns the on-disk path of the plugin, preferring the plain
// form over the ghosted one.
func (p *Plugin) resolve() (string, error) {
	path := filepath.Join(p.pluginsDir, p.name)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	ghosted := path + ghostSuffix
	if _, err := os.Stat(ghosted); err == nil {
		return ghosted, nil
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, p.name)
}

func hasSuffixFold(s, suffix string) bool {
	return len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix)
}
