// Package game describes the per-game conventions that load-order
// management depends on: where plugins live, where the active-plugin
// list is stored, which file is the game's own master, and which
// plugins the game engine always loads.
//
// A Settings value is immutable once constructed. Construct one with
// NewSettings, optionally applying path overrides loaded from a TOML
// file via LoadConfig.
package game
