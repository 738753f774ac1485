package loadorder

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/dshills/loadorder/game"
	"github.com/dshills/loadorder/plugin"
)

// fixture is a throwaway game install with a handful of plugins and a
// pre-seeded load order of the game's master plus an active Blank.esp.
type fixture struct {
	settings *game.Settings
	lo       *TimestampLoadOrder
}

func prepare(t *testing.T, id game.ID) *fixture {
	t.Helper()

	settings, err := game.NewSettings(id, t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("NewSettings() error = %v", err)
	}
	if err := os.MkdirAll(settings.PluginsDirectory(), 0o755); err != nil {
		t.Fatal(err)
	}

	installPlugin(t, settings, settings.MasterFile(), true)
	installPlugin(t, settings, "Blank.esm", true)
	installPlugin(t, settings, "Blank.esp", false)
	installPlugin(t, settings, "Blank - Different.esp", false)
	installPlugin(t, settings, "Blank - Master Dependent.esp", false)
	installPlugin(t, settings, "Blàñk.esp", false)

	lo := NewTimestamp(settings)
	master := mustPlugin(t, settings, settings.MasterFile())
	blank := mustPlugin(t, settings, "Blank.esp")
	blank.Activate()
	lo.setPluginList([]*plugin.Plugin{master, blank})

	return &fixture{settings: settings, lo: lo}
}

func mustPlugin(t *testing.T, settings *game.Settings, name string) *plugin.Plugin {
	t.Helper()
	p, err := plugin.New(name, settings)
	if err != nil {
		t.Fatalf("plugin.New(%q) error = %v", name, err)
	}
	return p
}

// installPlugin writes a plugin file with a valid header record.
func installPlugin(t *testing.T, settings *game.Settings, name string, master bool) {
	t.Helper()

	record := "TES4"
	if settings.ID() == game.Morrowind {
		record = "TES3"
	}
	data := make([]byte, 16)
	copy(data, record)
	if master {
		binary.LittleEndian.PutUint32(data[8:12], 0x1)
	}

	path := filepath.Join(settings.PluginsDirectory(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// setTimestamps gives the named plugin files distinct ascending
// modification times, in argument order.
func setTimestamps(t *testing.T, settings *game.Settings, names ...string) {
	t.Helper()
	base := time.Unix(1000000000, 0)
	for i, name := range names {
		ts := base.Add(time.Duration(i) * time.Hour)
		path := filepath.Join(settings.PluginsDirectory(), name)
		if err := os.Chtimes(path, ts, ts); err != nil {
			t.Fatal(err)
		}
	}
}

// writeActiveFile writes an active-plugin file in the game's format,
// Windows-1252 encoded.
func writeActiveFile(t *testing.T, settings *game.Settings, names ...string) {
	t.Helper()

	content := ""
	if settings.UsesLegacyActiveFormat() {
		content = "isrealmorrowindini=false\n[Game Files]\n"
		for i, name := range names {
			content += fmt.Sprintf("GameFile%d=%s\n", i, name)
		}
	} else {
		for _, name := range names {
			content += name + "\n"
		}
	}

	encoded, err := charmap.Windows1252.NewEncoder().String(content)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(settings.ActivePluginsFile()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(settings.ActivePluginsFile(), []byte(encoded), 0o644); err != nil {
		t.Fatal(err)
	}
}

func encodeWindows1252(t *testing.T, s string) []byte {
	t.Helper()
	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	return encoded
}
