package racedash

import (
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds every tunable threshold of the reduction engine. The two
// dashboard builds that preceded this one drifted apart on the idle
// timeout and the lap thresholds; a single parameterized engine replaces
// them.
type Config struct {
	// MovementThresholdKmh is the speed above which the car counts as
	// moving for timer purposes.
	MovementThresholdKmh float64
	// IdleTimeoutMs pauses the race timer after this long without
	// movement.
	IdleTimeoutMs int64
	// RaceDurationMs is the total race time counted down on the display.
	RaceDurationMs int64
	// LapLeaveM and LapReturnM are the hysteresis distances from the
	// start/finish point, in meters. The car must travel beyond
	// LapLeaveM before coming back within LapReturnM closes a lap.
	LapLeaveM  float64
	LapReturnM float64
	// HeadingSpeedFloorKmh suppresses heading recomputation below this
	// speed; GPS jitter while stationary produces meaningless bearings.
	HeadingSpeedFloorKmh float64
	// HeatMapCap bounds the number of retained heat-map points.
	HeatMapCap int
	// TurnProximityM is the radius around a turn that counts as "in" it.
	TurnProximityM float64
	// RenderIntervalMs caps how often the render boundary repaints.
	RenderIntervalMs int64
	// EfficiencyMinKmPerKwh and EfficiencyMaxKmPerKwh bound plausible
	// per-lap efficiency; values outside are sensor artifacts.
	EfficiencyMinKmPerKwh float64
	EfficiencyMaxKmPerKwh float64
}

// DefaultConfig matches the thresholds used at the Lusail short circuit.
func DefaultConfig() Config {
	return Config{
		MovementThresholdKmh:  0.5,
		IdleTimeoutMs:         30000,
		RaceDurationMs:        35 * 60 * 1000,
		LapLeaveM:             220,
		LapReturnM:            33,
		HeadingSpeedFloorKmh:  1,
		HeatMapCap:            5000,
		TurnProximityM:        55,
		RenderIntervalMs:      90,
		EfficiencyMinKmPerKwh: 0,
		EfficiencyMaxKmPerKwh: 10000,
	}
}

// LoadConfig reads a TOML config next to the binary. A missing file is
// not an error; defaults apply.
func LoadConfig(fileName string) (Config, error) {
	dir, err := filepath.Abs(filepath.Dir(os.Args[0]))
	if err != nil {
		return Config{}, errors.Wrap(err, "unable to determine binary location")
	}
	file, err := os.Open(filepath.Join(dir, fileName))
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "unable to open file %s", fileName)
	}
	defer file.Close()
	return LoadConfigFromReader(file)
}

// LoadConfigFromReader decodes TOML over the defaults, so a partial file
// only overrides the thresholds it names.
func LoadConfigFromReader(configReader io.Reader) (Config, error) {
	config := DefaultConfig()
	if _, err := toml.NewDecoder(configReader).Decode(&config); err != nil {
		return Config{}, errors.Wrap(err, "unable to load engine configuration")
	}
	return config, nil
}
