package scenario

import (
	"github.com/roach88/orbharness/internal/codec"
)

// DefaultBatteryName is the name of the built-in battery.
const DefaultBatteryName = "sbas-corrections"

// Sections of the built-in battery, in run order.
const (
	SectionBaseline   = "baseline"
	SectionSatellites = "satellites"
	SectionSisModes   = "sis-modes"
	SectionNavModes   = "nav-modes"
	SectionDo229      = "do229"
	SectionRawPayload = "raw-payload"
	SectionEdge       = "edge"
	SectionReadback   = "readback"
	SectionInvalid    = "invalid"
)

// held is the configuration the axis sections keep fixed while they sweep
// one field: every field at its lowest value.
var held = codec.Configuration{
	Satellite:    codec.SatelliteAuto,
	SisMode:      codec.SisModeTest,
	NavMode:      codec.NavModeEnRoute,
	Do229Version: codec.Do229Auto,
}

// DefaultBattery returns the full SBAS corrections battery.
//
// Every member of every field domain is set at least once. The invalid
// section is expected to fail and covers one omitted field per field, one
// out-of-domain value per field, and a too-short and a too-long payload.
func DefaultBattery() *Battery {
	b := &Battery{
		Name:        DefaultBatteryName,
		Description: "get/set coverage of every SBAS corrections field, raw payloads, edge cases and rejections",
	}

	// baseline: two reads of the untouched device must agree.
	b.add(Scenario{Label: "baseline/get-1", Section: SectionBaseline, Verb: codec.VerbGet})
	b.add(Scenario{
		Label:       "baseline/get-2",
		Section:     SectionBaseline,
		Verb:        codec.VerbGet,
		CompareWith: "baseline/get-1",
		Description: "repeated get is idempotent apart from timestamps",
	})

	for _, name := range codec.Allowed(codec.FieldSatellite) {
		c := held
		c.Satellite, _ = codec.ParseSatellite(name)
		b.set(SectionSatellites, "satellites/"+name, c, false)
	}
	for _, name := range codec.Allowed(codec.FieldSisMode) {
		c := held
		c.SisMode, _ = codec.ParseSisMode(name)
		b.set(SectionSisModes, "sis-modes/"+name, c, false)
	}
	for _, name := range codec.Allowed(codec.FieldNavMode) {
		c := held
		c.NavMode, _ = codec.ParseNavMode(name)
		b.set(SectionNavModes, "nav-modes/"+name, c, false)
	}
	for _, name := range codec.Allowed(codec.FieldDo229Version) {
		c := held
		c.Do229Version, _ = codec.ParseDo229Version(name)
		b.set(SectionDo229, "do229/"+name, c, false)
	}

	for _, c := range []codec.Configuration{
		{Satellite: codec.SatelliteWAAS, SisMode: codec.SisModeOperational, NavMode: codec.NavModePrecApp, Do229Version: codec.Do229C},
		{Satellite: codec.SatelliteEGNOS, SisMode: codec.SisModeOperational, NavMode: codec.NavModeEnRoute, Do229Version: codec.Do229Auto},
		{Satellite: codec.SatelliteS158, SisMode: codec.SisModeTest, NavMode: codec.NavModeMixedSystems, Do229Version: codec.Do229Auto},
	} {
		b.add(Scenario{
			Label:       "raw-payload/" + c.String(),
			Section:     SectionRawPayload,
			Verb:        codec.VerbSet,
			Payload:     codec.FormatPayload(c.Encode()),
			Description: "payload equivalent of " + c.String(),
		})
	}

	b.set(SectionEdge, "edge/min", held, false)
	b.set(SectionEdge, "edge/max", codec.Configuration{
		Satellite:    codec.SatelliteS158,
		SisMode:      codec.SisModeOperational,
		NavMode:      codec.NavModeMixedSystems,
		Do229Version: codec.Do229C,
	}, false)
	b.set(SectionEdge, "edge/short-flags", codec.Configuration{
		Satellite:    codec.SatelliteGAGAN,
		SisMode:      codec.SisModeOperational,
		NavMode:      codec.NavModePrecApp,
		Do229Version: codec.Do229Auto,
	}, true)
	b.add(Scenario{
		Label:        "edge/mixed-case",
		Section:      SectionEdge,
		Verb:         codec.VerbSet,
		Satellite:    "MsAs",
		SisMode:      "Operational",
		NavMode:      "PrecApp",
		Do229Version: "DO229C",
		Verbatim:     true,
		Description:  "field values are case-insensitive",
	})
	b.add(Scenario{
		Label:       "edge/spaced-payload",
		Section:     SectionEdge,
		Verb:        codec.VerbSet,
		Payload:     "0x03 01 01 01",
		Verbatim:    true,
		Description: "0x prefix and byte spacing are accepted",
	})

	b.add(Scenario{Label: "readback/get", Section: SectionReadback, Verb: codec.VerbGet})

	b.invalid()
	return b
}

func (b *Battery) add(s Scenario) {
	b.Scenarios = append(b.Scenarios, s)
}

func (b *Battery) set(section, label string, c codec.Configuration, short bool) {
	b.add(Scenario{
		Label:        label,
		Section:      section,
		Verb:         codec.VerbSet,
		Satellite:    c.Satellite.String(),
		SisMode:      c.SisMode.String(),
		NavMode:      c.NavMode.String(),
		Do229Version: c.Do229Version.String(),
		ShortFlags:   short,
	})
}

// invalid appends the rejection cases, all expected to fail.
func (b *Battery) invalid() {
	valid := Scenario{
		Section:      SectionInvalid,
		Verb:         codec.VerbSet,
		Satellite:    "waas",
		SisMode:      "operational",
		NavMode:      "enroute",
		Do229Version: "auto",
		Expect:       ExpectFailure,
	}
	bad := map[codec.FieldName]string{
		codec.FieldSatellite:    "galileo",
		codec.FieldSisMode:      "live",
		codec.FieldNavMode:      "approach",
		codec.FieldDo229Version: "do229d",
	}

	for _, f := range codec.Fields {
		s := valid
		s.Label = "invalid/missing-" + string(f)
		s.setField(f, "")
		b.add(s)
	}
	for _, f := range codec.Fields {
		s := valid
		s.Label = "invalid/bad-" + string(f)
		s.setField(f, bad[f])
		b.add(s)
	}
	for _, p := range []struct{ name, payload string }{
		{"short-payload", "0102"},
		{"long-payload", "0102030405"},
	} {
		b.add(Scenario{
			Label:   "invalid/" + p.name,
			Section: SectionInvalid,
			Verb:    codec.VerbSet,
			Payload: p.payload,
			Expect:  ExpectFailure,
		})
	}
}

func (s *Scenario) setField(f codec.FieldName, v string) {
	switch f {
	case codec.FieldSatellite:
		s.Satellite = v
	case codec.FieldSisMode:
		s.SisMode = v
	case codec.FieldNavMode:
		s.NavMode = v
	case codec.FieldDo229Version:
		s.Do229Version = v
	}
}
