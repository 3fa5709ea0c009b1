package imager

import (
	"github.com/npillmayer/schuko"
	"github.com/xwmx/glyph-imager/backend/magick"
)

// Configuration keys
const (
	KeySize       = "imager.size"
	KeyPercentage = "imager.pointsize-percentage"
	KeyGravity    = "imager.gravity"
	KeyBackground = "imager.background"
	KeyOutputDir  = "imager.output-dir"
	KeyCommand    = "imager.convert"
	KeyWorkers    = "imager.workers"
)

// DefaultWorkers is the number of concurrent rasterizer runs of a catalog.
const DefaultWorkers = 4

// OptionsFromConfig reads imager options from a configuration. Keys not set
// in conf are left unset in the options.
func OptionsFromConfig(conf schuko.Configuration) magick.Options {
	opts := magick.Options{}
	if conf == nil {
		return opts
	}
	get := func(key string) string {
		if !conf.IsSet(key) {
			return ""
		}
		return conf.GetString(key)
	}
	opts.Size = get(KeySize)
	opts.Gravity = get(KeyGravity)
	opts.Background = get(KeyBackground)
	opts.OutputDir = get(KeyOutputDir)
	opts.Command = get(KeyCommand)
	if conf.IsSet(KeyPercentage) {
		opts.PointSizePercentage = conf.GetInt(KeyPercentage)
	}
	tracer().Debugf("options from configuration: %+v", opts)
	return opts
}

// WorkersFromConfig reads the number of catalog workers from conf.
func WorkersFromConfig(conf schuko.Configuration) int {
	if conf == nil || !conf.IsSet(KeyWorkers) {
		return DefaultWorkers
	}
	if n := conf.GetInt(KeyWorkers); n > 0 {
		return n
	}
	return DefaultWorkers
}

// NewFromConfig creates an imager with defaults taken from conf.
func NewFromConfig(conf schuko.Configuration, runner magick.Runner) *Imager {
	return New(runner, OptionsFromConfig(conf))
}
