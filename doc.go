// Package loadorder manages the load order and active set of a game's
// content plugins, persisting both through the filesystem the same way
// the game engine reads them: relative order lives in the plugin
// files' own modification timestamps, and the active set lives in a
// small per-game text file.
//
// The entry point is NewTimestamp, which builds a TimestampLoadOrder
// for a game described by a game.Settings. Load replaces the in-memory
// state from disk; Save projects it back. Mutation methods (Activate,
// SetLoadOrder, SetPluginIndex, ...) validate before committing and
// touch memory only.
//
// Instances are not safe for concurrent use, and the on-disk state is
// single-writer: callers must not run operations concurrently against
// the same directory or file. A Watcher can flag external changes
// between operations.
package loadorder
