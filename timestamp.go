package loadorder

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/loadorder/game"
	"github.com/dshills/loadorder/plugin"
)

// timestampPadding separates newly invented timestamps when the
// existing set has duplicates.
const timestampPadding = 60 * time.Second

// TimestampLoadOrder persists load order through plugin file
// modification timestamps and activity through the game's
// active-plugin file. It is the strategy for Morrowind, Oblivion,
// Fallout 3 and Fallout: New Vegas.
type TimestampLoadOrder struct {
	base
	log     *zap.Logger
	workers int
}

// Option configures a TimestampLoadOrder.
type Option func(*TimestampLoadOrder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(lo *TimestampLoadOrder) {
		if log != nil {
			lo.log = log
		}
	}
}

// WithWorkers caps the worker pool used for the parallel phases of
// Load and Save.
func WithWorkers(n int) Option {
	return func(lo *TimestampLoadOrder) {
		if n > 0 {
			lo.workers = n
		}
	}
}

// NewTimestamp creates an empty timestamp-based load order for the
// given game.
func NewTimestamp(settings *game.Settings, opts ...Option) *TimestampLoadOrder {
	lo := &TimestampLoadOrder{
		base:    base{settings: settings},
		log:     zap.NewNop(),
		workers: runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(lo)
	}

	return lo
}

var _ LoadOrder = (*TimestampLoadOrder)(nil)

// Load replaces the in-memory state from disk: plugins are discovered
// in the plugins directory, sorted into timestamp order with masters
// first, and marked active according to the active-plugin file. A
// missing plugins directory yields an empty order; a missing
// active-plugin file yields an empty active set.
func (lo *TimestampLoadOrder) Load() error {
	lo.setPluginList(nil)

	filenames, err := pluginFilesIn(lo.settings.PluginsDirectory())
	if err != nil {
		return err
	}

	plugins := lo.buildPlugins(filenames)
	sortPlugins(plugins)
	lo.setPluginList(plugins)

	names, err := readActivePlugins(lo.settings)
	if err != nil {
		return err
	}
	for _, name := range names {
		if i, found := indexOf(lo.pluginList(), name); found {
			lo.pluginList()[i].Activate()
		}
	}

	addImplicitlyActivePlugins(lo)
	deactivateExcessPlugins(lo)

	lo.log.Info("load order loaded",
		zap.Stringer("game", lo.settings.ID()),
		zap.Int("plugins", len(lo.pluginList())),
		zap.Int("active", countActive(lo.pluginList())))
	return nil
}

// Save projects the in-memory state onto disk: every plugin's
// modification time is rewritten so that re-sorting reproduces the
// current order, then the active-plugin file is rewritten.
//
// The two writes are not transactional: if a timestamp write or the
// active-plugin file write fails, timestamps already applied are not
// rolled back.
func (lo *TimestampLoadOrder) Save() error {
	plugins := lo.pluginList()
	timestamps := paddedUniqueTimestamps(plugins)

	var g errgroup.Group
	g.SetLimit(lo.workers)
	for i := range plugins {
		i := i
		g.Go(func() error {
			return plugins[i].SetModificationTime(timestamps[i])
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := writeActivePlugins(lo.settings, lo.ActivePluginNames()); err != nil {
		return err
	}

	lo.log.Info("load order saved",
		zap.Stringer("game", lo.settings.ID()),
		zap.Int("plugins", len(plugins)),
		zap.Int("active", countActive(plugins)))
	return nil
}

// SetLoadOrder replaces the order with the given plugins.
func (lo *TimestampLoadOrder) SetLoadOrder(pluginNames []string) error {
	return replacePlugins(lo, pluginNames)
}

// SetPluginIndex moves or inserts a plugin at the given position.
func (lo *TimestampLoadOrder) SetPluginIndex(pluginName string, index int) error {
	return moveOrInsertPlugin(lo, pluginName, index)
}

// SetActivePlugins replaces the active set with the given plugins.
func (lo *TimestampLoadOrder) SetActivePlugins(pluginNames []string) error {
	return setActivePlugins(lo, pluginNames)
}

// Activate flags the named plugin for loading.
func (lo *TimestampLoadOrder) Activate(pluginName string) error {
	return activate(lo, pluginName)
}

// Deactivate clears the named plugin's active flag.
func (lo *TimestampLoadOrder) Deactivate(pluginName string) error {
	return deactivate(lo, pluginName)
}

// InsertPosition places a new master immediately before the first
// non-master so the master invariant holds without a re-sort.
// Non-masters, and masters joining an all-master order, get no
// preferred position.
func (lo *TimestampLoadOrder) InsertPosition(p *plugin.Plugin) (int, bool) {
	if !p.IsMasterFile() {
		return 0, false
	}
	i := firstNonMasterIndex(lo.pluginList())
	if i == len(lo.pluginList()) {
		return 0, false
	}
	return i, true
}

// IsSelfConsistent always reports true: there is no secondary order
// file that could diverge from the timestamp-derived order.
func (lo *TimestampLoadOrder) IsSelfConsistent() (bool, error) {
	return true, nil
}

// pluginFilesIn lists candidate filenames in the plugins directory. A
// missing directory is an empty result, not an error.
func pluginFilesIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading plugins directory %s: %w", dir, err)
	}

	var filenames []string
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			filenames = append(filenames, entry.Name())
		}
	}
	return filenames, nil
}

// buildPlugins converts candidate filenames to plugins in parallel.
// Candidates that fail validation are dropped; positional order is
// kept for the survivors.
func (lo *TimestampLoadOrder) buildPlugins(filenames []string) []*plugin.Plugin {
	results := make([]*plugin.Plugin, len(filenames))

	var g errgroup.Group
	g.SetLimit(lo.workers)
	for i, name := range filenames {
		i, name := i, name
		g.Go(func() error {
			p, err := plugin.New(name, lo.settings)
			if err != nil {
				lo.log.Debug("dropping invalid plugin candidate",
					zap.String("file", name), zap.Error(err))
				return nil
			}
			results[i] = p
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	plugins := make([]*plugin.Plugin, 0, len(results))
	for _, p := range results {
		if p != nil {
			plugins = append(plugins, p)
		}
	}
	return plugins
}

// paddedUniqueTimestamps returns one timestamp per plugin: the distinct
// timestamps already present, ascending, padded with values 60 seconds
// past the maximum until the counts match. Assigning the i-th value to
// the i-th plugin of the current order makes a re-sort reproduce that
// order while reusing as many on-disk timestamps as possible.
func paddedUniqueTimestamps(plugins []*plugin.Plugin) []time.Time {
	timestamps := make([]time.Time, 0, len(plugins))
	for _, p := range plugins {
		timestamps = append(timestamps, p.ModificationTime())
	}

	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i].Before(timestamps[j])
	})
	timestamps = dedupTimes(timestamps)

	for len(timestamps) < len(plugins) {
		last := time.Unix(0, 0)
		if n := len(timestamps); n > 0 {
			last = timestamps[n-1]
		}
		timestamps = append(timestamps, last.Add(timestampPadding))
	}
	return timestamps
}

func dedupTimes(sorted []time.Time) []time.Time {
	out := sorted[:0]
	for _, t := range sorted {
		if len(out) == 0 || !out[len(out)-1].Equal(t) {
			out = append(out, t)
		}
	}
	return out
}
