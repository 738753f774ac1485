package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Errors returned by settings construction.
var (
	// ErrUnknownGame is returned for an ID outside the supported set.
	ErrUnknownGame = errors.New("unknown game")

	// ErrNoLocalPath is returned when a game stores its active-plugin
	// list under the local application data directory and no such
	// directory was supplied.
	ErrNoLocalPath = errors.New("no local app data path set")
)

// ID identifies a supported game.
type ID int

const (
	// Morrowind is TES III: Morrowind.
	Morrowind ID = iota
	// Oblivion is TES IV: Oblivion.
	Oblivion
	// Skyrim is TES V: Skyrim.
	Skyrim
	// Fallout3 is Fallout 3.
	Fallout3
	// FalloutNV is Fallout: New Vegas.
	FalloutNV
	// Fallout4 is Fallout 4.
	Fallout4
)

// String returns the game's name.
func (id ID) String() string {
	switch id {
	case Morrowind:
		return "Morrowind"
	case Oblivion:
		return "Oblivion"
	case Skyrim:
		return "Skyrim"
	case Fallout3:
		return "Fallout3"
	case FalloutNV:
		return "FalloutNV"
	case Fallout4:
		return "Fallout4"
	default:
		return "unknown"
	}
}

// ParseID converts a game name, as used in config files, to an ID.
func ParseID(name string) (ID, error) {
	for _, id := range []ID{Morrowind, Oblivion, Skyrim, Fallout3, FalloutNV, Fallout4} {
		if strings.EqualFold(name, id.String()) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownGame, name)
}

// Method is the persistence mechanism a game uses for load order.
type Method int

const (
	// MethodTimestamp encodes load order in plugin file modification
	// times.
	MethodTimestamp Method = iota
	// MethodTextfile persists load order in a dedicated text file.
	MethodTextfile
	// MethodAsterisk persists order and activity in one annotated file.
	MethodAsterisk
)

// Settings holds one game's load-order conventions and resolved paths.
type Settings struct {
	id     ID
	method Method

	gamePath  string
	localPath string

	masterFile        string
	pluginsFolderName string
	activeFileName    string

	activePluginsFile string
}

// NewSettings resolves the conventions and paths for the given game.
// gamePath is the game's install directory. localPath is the game's
// local application data directory; it may be empty for games that do
// not store their active-plugin list there.
func NewSettings(id ID, gamePath, localPath string) (*Settings, error) {
	s := &Settings{
		id:        id,
		gamePath:  gamePath,
		localPath: localPath,
	}

	switch id {
	case Morrowind:
		s.method = MethodTimestamp
		s.masterFile = "Morrowind.esm"
		s.pluginsFolderName = "Data Files"
		s.activeFileName = "Morrowind.ini"
	case Oblivion:
		s.method = MethodTimestamp
		s.masterFile = "Oblivion.esm"
		s.pluginsFolderName = "Data"
		s.activeFileName = "plugins.txt"
	case Skyrim:
		s.method = MethodTextfile
		s.masterFile = "Skyrim.esm"
		s.pluginsFolderName = "Data"
		s.activeFileName = "plugins.txt"
	case Fallout3:
		s.method = MethodTimestamp
		s.masterFile = "Fallout3.esm"
		s.pluginsFolderName = "Data"
		s.activeFileName = "plugins.txt"
	case FalloutNV:
		s.method = MethodTimestamp
		s.masterFile = "FalloutNV.esm"
		s.pluginsFolderName = "Data"
		s.activeFileName = "plugins.txt"
	case Fallout4:
		s.method = MethodAsterisk
		s.masterFile = "Fallout4.esm"
		s.pluginsFolderName = "Data"
		s.activeFileName = "plugins.txt"
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownGame, id)
	}

	if err := s.initActivePluginsFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// initActivePluginsFile resolves where the active-plugin list lives.
// Morrowind keeps it in the install directory; Oblivion does too when
// Oblivion.ini sets bUseMyGamesDirectory=0; every other game keeps it
// under local app data.
func (s *Settings) initActivePluginsFile() error {
	if s.id == Morrowind {
		s.activePluginsFile = filepath.Join(s.gamePath, s.activeFileName)
		return nil
	}

	if s.id == Oblivion && useGameDirForPlugins(filepath.Join(s.gamePath, "Oblivion.ini")) {
		s.activePluginsFile = filepath.Join(s.gamePath, s.activeFileName)
		return nil
	}

	if s.localPath == "" {
		return ErrNoLocalPath
	}
	s.activePluginsFile = filepath.Join(s.localPath, s.activeFileName)
	return nil
}

// useGameDirForPlugins reports whether an Oblivion.ini at the given
// path disables the My Games directory. The setting only takes effect
// when it exists and is exactly 0.
func useGameDirForPlugins(iniPath string) bool {
	data, err := os.ReadFile(iniPath)
	if err != nil {
		return false
	}

	const setting = "bUseMyGamesDirectory="
	i := strings.Index(string(data), setting)
	if i < 0 || i+len(setting) >= len(data) {
		return false
	}
	return data[i+len(setting)] == '0'
}

// ID returns the game's identity.
func (s *Settings) ID() ID {
	return s.id
}

// Method returns the game's load-order persistence method.
func (s *Settings) Method() Method {
	return s.method
}

// MasterFile returns the filename of the game's own master plugin.
func (s *Settings) MasterFile() string {
	return s.masterFile
}

// PluginsDirectory returns the directory the game loads plugins from.
func (s *Settings) PluginsDirectory() string {
	return filepath.Join(s.gamePath, s.pluginsFolderName)
}

// ActivePluginsFile returns the path of the active-plugin list.
func (s *Settings) ActivePluginsFile() string {
	return s.activePluginsFile
}

// UsesLegacyActiveFormat reports whether the active-plugin list uses
// the numbered GameFileN= key format inside the game's ini file.
func (s *Settings) UsesLegacyActiveFormat() bool {
	return s.id == Morrowind
}

// ImplicitlyActivePlugins returns the plugins the game engine loads
// regardless of the active-plugin list's contents.
func (s *Settings) ImplicitlyActivePlugins() []string {
	switch s.id {
	case Skyrim:
		return []string{s.masterFile, "Update.esm"}
	case Fallout4:
		return []string{s.masterFile, "DLCRobot.esm", "DLCworkshop01.esm", "DLCCoast.esm"}
	default:
		return nil
	}
}

// IsImplicitlyActive reports whether the named plugin is one the game
// engine always loads. Comparison is case-insensitive.
func (s *Settings) IsImplicitlyActive(pluginName string) bool {
	for _, name := range s.ImplicitlyActivePlugins() {
		if strings.EqualFold(pluginName, name) {
			return true
		}
	}
	return false
}
