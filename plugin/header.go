package plugin

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/dshills/loadorder/game"
)

// recordFlagMaster marks a plugin as a master file in TES4-style
// header records.
const recordFlagMaster = 0x1

// headerRecordType returns the record type tag that starts a valid
// plugin file for the given game.
func headerRecordType(id game.ID) string {
	if id == game.Morrowind {
		return "TES3"
	}
	return "TES4"
}

// readHeaderFlags validates the file's header record and returns its
// flags field. Morrowind's TES3 record carries no master flag; callers
// decide masterhood from the extension for that game.
func readHeaderFlags(path string, id game.ID) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	// Record type tag, record size, then the flags field.
	var raw [12]byte
	if _, err := io.ReadFull(f, raw[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	if want := headerRecordType(id); string(raw[:4]) != want {
		return 0, fmt.Errorf("%w: record type %q, want %q", ErrInvalidHeader, raw[:4], want)
	}

	return binary.LittleEndian.Uint32(raw[8:12]), nil
}
