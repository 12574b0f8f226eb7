package racedash

// LapEfficiency is one accepted per-lap efficiency reading.
type LapEfficiency struct {
	Lap      int
	KmPerKwh float64
}

// efficiencyLedger converts lap deltas into km/kWh and keeps the ordered
// history shown on the dashboard. Implausible readings are discarded
// rather than recorded as zero: a lap can complete without a trustworthy
// efficiency sample.
type efficiencyLedger struct {
	min     float64
	max     float64
	history []LapEfficiency
}

func newEfficiencyLedger(cfg Config) *efficiencyLedger {
	return &efficiencyLedger{
		min: cfg.EfficiencyMinKmPerKwh,
		max: cfg.EfficiencyMaxKmPerKwh,
	}
}

// record appends an entry when the reading is plausible and reports the
// computed value. Zero or negative energy makes the lap unmeasurable,
// not infinitely efficient.
func (l *efficiencyLedger) record(lap int, distanceKm, energyWh float64) (float64, bool) {
	if energyWh <= 0 {
		return 0, false
	}
	kmPerKwh := distanceKm / (energyWh / 1000)
	if kmPerKwh <= l.min || kmPerKwh >= l.max {
		return kmPerKwh, false
	}
	l.history = append(l.history, LapEfficiency{Lap: lap, KmPerKwh: kmPerKwh})
	return kmPerKwh, true
}

// entries returns a copy; the ledger's own slice stays engine-owned.
func (l *efficiencyLedger) entries() []LapEfficiency {
	out := make([]LapEfficiency, len(l.history))
	copy(out, l.history)
	return out
}
