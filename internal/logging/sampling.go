package logging

import (
	"sort"

	"go.uber.org/zap/zapcore"
)

// newSampledCore wraps core with level-aware sampling. Each configured level
// below Error gets its own sampler; Error and above are never sampled.
// Levels without configuration pass through unsampled.
func newSampledCore(core zapcore.Core, cfg SamplingConfig) zapcore.Core {
	if !cfg.Enabled {
		return core
	}

	levels := make([]zapcore.Level, 0, len(cfg.Levels))
	for lvl := range cfg.Levels {
		if lvl < zapcore.ErrorLevel {
			levels = append(levels, lvl)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })

	sampled := make(map[zapcore.Level]bool, len(levels))
	cores := make([]zapcore.Core, 0, len(levels)+1)
	for _, lvl := range levels {
		rate := cfg.Levels[lvl]
		sampled[lvl] = true
		cores = append(cores, zapcore.NewSamplerWithOptions(
			&levelFilterCore{Core: core, match: exactly(lvl)},
			cfg.Tick.Duration(),
			rate.Initial,
			rate.Thereafter,
		))
	}

	// Everything else, including Error+, is written as is.
	cores = append(cores, &levelFilterCore{
		Core:  core,
		match: func(lvl zapcore.Level) bool { return !sampled[lvl] },
	})

	return zapcore.NewTee(cores...)
}

func exactly(want zapcore.Level) func(zapcore.Level) bool {
	return func(lvl zapcore.Level) bool { return lvl == want }
}

// levelFilterCore restricts a core to the levels accepted by match.
type levelFilterCore struct {
	zapcore.Core
	match func(zapcore.Level) bool
}

func (c *levelFilterCore) Enabled(lvl zapcore.Level) bool {
	return c.match(lvl) && c.Core.Enabled(lvl)
}

func (c *levelFilterCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(e.Level) {
		return ce
	}
	return c.Core.Check(e, ce)
}

// With creates a child core that preserves level filtering.
func (c *levelFilterCore) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilterCore{
		Core:  c.Core.With(fields),
		match: c.match,
	}
}
