package racedash

import (
	"math"
	"time"
)

// RawSample is one inbound packet as published by the joule meter over
// MQTT, or synthesized by the device-GPS fallback source. Every field is
// optional; absent or non-finite values are substituted during
// normalization rather than rejected.
type RawSample struct {
	Voltage    *float64 `json:"voltage"`
	Current    *float64 `json:"current"`
	Power      *float64 `json:"power"`
	Speed      *float64 `json:"speed"`
	RPM        *float64 `json:"rpm"`
	DistanceKm *float64 `json:"distance_km"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// Sample is one normalized telemetry reading. All numeric fields are
// finite. Samples are produced once per inbound packet and consumed
// immediately; they are never retained.
type Sample struct {
	At         time.Time
	Voltage    float64
	Current    float64
	Power      float64
	SpeedKmh   float64
	RPM        float64
	DistanceKm float64
	Latitude   float64
	Longitude  float64
}

func finiteOr(v *float64, fallback float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fallback
	}
	return *v
}

// positionOr falls back for zero as well as missing and non-finite
// values: a corrupt position field must never teleport the car to (0, 0).
func positionOr(v *float64, last float64) float64 {
	p := finiteOr(v, 0)
	if p == 0 {
		return last
	}
	return p
}

// normalize coerces a raw packet into a Sample. Electrical and motion
// fields default to zero; position falls back to the last known fix.
func normalize(raw RawSample, at time.Time, lastLat, lastLon float64) Sample {
	return Sample{
		At:         at,
		Voltage:    finiteOr(raw.Voltage, 0),
		Current:    finiteOr(raw.Current, 0),
		Power:      finiteOr(raw.Power, 0),
		SpeedKmh:   finiteOr(raw.Speed, 0),
		RPM:        finiteOr(raw.RPM, 0),
		DistanceKm: finiteOr(raw.DistanceKm, 0),
		Latitude:   positionOr(raw.Latitude, lastLat),
		Longitude:  positionOr(raw.Longitude, lastLon),
	}
}
