package racedash

import (
	"io"

	geojson "github.com/paulmach/go.geojson"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// TurnDirection is the cue shown to the driver when approaching a turn.
type TurnDirection string

const (
	TurnLeft     TurnDirection = "left"
	TurnRight    TurnDirection = "right"
	TurnStraight TurnDirection = "straight"
	TurnNone     TurnDirection = "none"
)

// Turn is a named point on the track with the direction to steer.
type Turn struct {
	Point     orb.Point
	Name      string
	Direction TurnDirection
}

// TrackGeometry is static reference data for one circuit. It is loaded
// once and never mutated during a session.
type TrackGeometry struct {
	Name string
	// Center is the start/finish point; lap detection measures from here.
	Center orb.Point
	// StopLine marks the mandatory mid-race stop. Render concern only.
	StopLine orb.Point
	Outline  orb.LineString
	Turns    []Turn
}

// LusailShort is the Qatar Lusail short circuit used by the team.
// Turn directions are as driven, *not* as mapped: the source survey had
// left and right swapped.
func LusailShort() TrackGeometry {
	return TrackGeometry{
		Name:     "Lusail Short Circuit",
		Center:   orb.Point{51.450190017, 25.488435783},
		StopLine: orb.Point{51.4508796665, 25.49187893325},
		Turns: []Turn{
			{orb.Point{51.447485, 25.492879}, "TURN 1", TurnRight},
			{orb.Point{51.447801, 25.493345}, "TURN 2", TurnRight},
			{orb.Point{51.448345, 25.493382}, "TURN 3", TurnRight},
			{orb.Point{51.451190, 25.491656}, "TURN 4", TurnLeft},
			{orb.Point{51.451944, 25.491361}, "TURN 5", TurnRight},
			{orb.Point{51.459162, 25.489900}, "TURN 6", TurnRight},
			{orb.Point{51.458766, 25.487006}, "TURN 7", TurnRight},
		},
		Outline: orb.LineString{
			{51.450041667, 25.488720817},
			{51.449772783, 25.489118117},
			{51.4494259, 25.489634967},
			{51.4490968, 25.490174433},
			{51.448718667, 25.490778517},
			{51.4483175, 25.491375483},
			{51.447894133, 25.49207065},
			{51.447592117, 25.49281835},
			{51.44779815, 25.49332805},
			{51.4485594, 25.493340667},
			{51.4492677, 25.492783567},
			{51.4499655, 25.492344683},
			{51.4504178, 25.492093667},
			{51.450869917, 25.491843833},
			{51.451032067, 25.491728483},
			{51.451620533, 25.491605533},
			{51.45209375, 25.49126045},
			{51.452599483, 25.4907238},
			{51.4532868, 25.4903161},
			{51.454066267, 25.490022133},
			{51.454641933, 25.489953533},
			{51.455323067, 25.489913083},
			{51.4560174, 25.489864867},
			{51.456826383, 25.489941783},
			{51.457621017, 25.490047383},
			{51.458597433, 25.4901291},
			{51.4592955, 25.489850217},
			{51.459635267, 25.489330333},
			{51.459938433, 25.4888498},
			{51.459881967, 25.48819055},
			{51.459461033, 25.4876145},
			{51.458864067, 25.487013117},
			{51.4578886, 25.487152133},
			{51.456626417, 25.487378983},
			{51.455559233, 25.487225267},
			{51.45511635, 25.486557067},
			{51.454824083, 25.485987883},
			{51.454472317, 25.485314717},
			{51.45412505, 25.484617433},
			{51.453340033, 25.483955633},
			{51.452493867, 25.484620783},
			{51.45201425, 25.485420317},
			{51.451725583, 25.48590055},
			{51.451353483, 25.486500183},
			{51.4508152, 25.48733545},
			{51.4504049, 25.487992833},
			{51.450041667, 25.488720817},
		},
	}
}

// LoadTrackGeoJSON reads a circuit definition from a GeoJSON feature
// collection: one LineString for the outline, Point features for the
// rest. A point's "kind" property selects its role ("start", "stop" or
// "turn"); turns carry "name" and "direction" properties.
func LoadTrackGeoJSON(r io.Reader) (TrackGeometry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return TrackGeometry{}, errors.Wrap(err, "unable to read track file")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return TrackGeometry{}, errors.Wrap(err, "unable to parse track geojson")
	}

	track := TrackGeometry{}
	for _, f := range fc.Features {
		if name, err := f.PropertyString("name"); err == nil && f.Geometry.IsLineString() {
			track.Name = name
		}
		switch {
		case f.Geometry.IsLineString():
			for _, c := range f.Geometry.LineString {
				if len(c) < 2 {
					return TrackGeometry{}, errors.New("outline coordinate missing lon/lat")
				}
				track.Outline = append(track.Outline, orb.Point{c[0], c[1]})
			}
		case f.Geometry.IsPoint():
			pt := orb.Point{f.Geometry.Point[0], f.Geometry.Point[1]}
			kind, err := f.PropertyString("kind")
			if err != nil {
				return TrackGeometry{}, errors.New("point feature missing kind property")
			}
			switch kind {
			case "start":
				track.Center = pt
			case "stop":
				track.StopLine = pt
			case "turn":
				name, _ := f.PropertyString("name")
				dir, err := f.PropertyString("direction")
				if err != nil {
					return TrackGeometry{}, errors.Wrapf(err, "turn %s missing direction", name)
				}
				switch TurnDirection(dir) {
				case TurnLeft, TurnRight, TurnStraight:
				default:
					return TrackGeometry{}, errors.Errorf("turn %s has unknown direction %q", name, dir)
				}
				track.Turns = append(track.Turns, Turn{Point: pt, Name: name, Direction: TurnDirection(dir)})
			default:
				return TrackGeometry{}, errors.Errorf("unknown point kind %q", kind)
			}
		}
	}

	if len(track.Outline) == 0 {
		return TrackGeometry{}, errors.New("track has no outline")
	}
	if track.Center == (orb.Point{}) {
		return TrackGeometry{}, errors.New("track has no start point")
	}
	return track, nil
}
