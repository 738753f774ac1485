// Package plugin models one installed plugin file: its
// case-insensitive filename identity, its master-file flag, its
// modification time, and whether it is active.
//
// Plugins are constructed with New, which validates the file on disk;
// a file that fails validation never produces a Plugin. A plugin may
// be installed in ghosted form (a ".ghost" filename suffix); the
// suffix is not part of the plugin's identity and filesystem reads and
// writes resolve to whichever form exists.
package plugin
