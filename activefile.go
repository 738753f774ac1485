package loadorder

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/dshills/loadorder/game"
)

// gameFilesHeader marks the start of entries in the legacy keyed
// active-plugin format. Everything up to and including its line is
// preserved verbatim across saves.
const gameFilesHeader = "[Game Files]"

// gameFileLine extracts the plugin name from a legacy keyed entry.
var gameFileLine = regexp.MustCompile(`(?i)GameFile[0-9]{1,3}=(.+\.es(?:m|p))`)

// activeFileEncoding is the fixed single-byte encoding of the
// active-plugin file, for either format.
var activeFileEncoding = charmap.Windows1252

// readActivePlugins decodes the game's active-plugin file into
// candidate names, in file order. A missing file is an empty result,
// not an error. Blank lines, comment lines and format-invalid lines
// are skipped, never fatal.
func readActivePlugins(settings *game.Settings) ([]string, error) {
	data, err := os.ReadFile(settings.ActivePluginsFile())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", settings.ActivePluginsFile(), err)
	}

	decoded, err := activeFileEncoding.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", settings.ActivePluginsFile(), err)
	}

	var names []string
	for _, line := range strings.Split(string(decoded), "\n") {
		line = strings.TrimSuffix(line, "\r")

		if settings.UsesLegacyActiveFormat() {
			m := gameFileLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			line = m[1]
		}

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}

// writeActivePlugins rewrites the game's active-plugin file with the
// given names, in order. The legacy format gets renumbered GameFileN=
// keys and keeps the pre-existing prelude; the plain format emits bare
// names. Names are encoded strictly: an unrepresentable name aborts
// the write with an EncodeError, and because the file is opened
// truncating, may leave it partially written.
func writeActivePlugins(settings *game.Settings, pluginNames []string) error {
	path := settings.ActivePluginsFile()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating parent directory of %s: %w", path, err)
	}

	var prelude []byte
	if settings.UsesLegacyActiveFormat() {
		var err error
		if prelude, err = readFilePrelude(path); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	_, _ = w.Write(prelude)

	encoder := activeFileEncoding.NewEncoder()
	for i, name := range pluginNames {
		if settings.UsesLegacyActiveFormat() {
			fmt.Fprintf(w, "GameFile%d=", i)
		}
		encoded, err := encoder.String(name)
		if err != nil {
			f.Close()
			return &EncodeError{Name: name, Err: err}
		}
		_, _ = w.WriteString(encoded)
		_ = w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// readFilePrelude captures all bytes of an existing active-plugin file
// up to and including the game-files header line. Lines are normalised
// to a single trailing newline, as the legacy reader does. A missing
// file yields an empty prelude; a file without the header line is
// preserved whole.
func readFilePrelude(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer f.Close()

	var prelude []byte
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			if line[len(line)-1] != '\n' {
				line = append(line, '\n')
			}
			prelude = append(prelude, line...)
			if bytes.HasPrefix(line, []byte(gameFilesHeader)) {
				break
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	return prelude, nil
}
