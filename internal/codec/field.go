package codec

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldName identifies one configuration axis.
// The string value doubles as the long flag of the device tool.
type FieldName string

const (
	FieldSatellite    FieldName = "satellite"
	FieldSisMode      FieldName = "sis-mode"
	FieldNavMode      FieldName = "nav-mode"
	FieldDo229Version FieldName = "do229"
)

// Fields lists the configuration axes in their fixed reporting order.
var Fields = []FieldName{FieldSatellite, FieldSisMode, FieldNavMode, FieldDo229Version}

type member struct {
	name  string
	value byte
}

// domain is the closed set of values one field accepts.
type domain struct {
	field   FieldName
	short   string // short flag alias, empty when the tool has none
	members []member
}

var (
	satelliteDomain = &domain{
		field: FieldSatellite,
		short: "s",
		members: []member{
			{"auto", 0x00},
			{"egnos", 0x01},
			{"waas", 0x02},
			{"msas", 0x03},
			{"gagan", 0x04},
			{"sdcm", 0x05},
			{"s120", 0x06},
			{"s158", 0x2D},
		},
	}
	sisModeDomain = &domain{
		field: FieldSisMode,
		members: []member{
			{"test", 0x00},
			{"operational", 0x01},
		},
	}
	navModeDomain = &domain{
		field: FieldNavMode,
		short: "n",
		members: []member{
			{"enroute", 0x00},
			{"precapp", 0x01},
			{"mixedsystems", 0x02},
		},
	}
	do229Domain = &domain{
		field: FieldDo229Version,
		short: "d",
		members: []member{
			{"auto", 0x00},
			{"do229c", 0x01},
		},
	}
)

func domainOf(f FieldName) *domain {
	switch f {
	case FieldSatellite:
		return satelliteDomain
	case FieldSisMode:
		return sisModeDomain
	case FieldNavMode:
		return navModeDomain
	case FieldDo229Version:
		return do229Domain
	}
	return nil
}

// fold returns the canonical comparison key for raw user input: plain
// lower-casing with no trimming, matching the device tool. A Caser is
// stateful, so one is built per call.
func fold(raw string) string {
	return cases.Lower(language.Und).String(raw)
}

func (d *domain) parse(raw string) (byte, error) {
	key := fold(raw)
	for _, m := range d.members {
		if m.name == key {
			return m.value, nil
		}
	}
	return 0, &ValidationError{
		Kind:    InvalidEnumValue,
		Field:   d.field,
		Value:   raw,
		Allowed: d.names(),
	}
}

func (d *domain) name(v byte) (string, bool) {
	for _, m := range d.members {
		if m.value == v {
			return m.name, true
		}
	}
	return "", false
}

func (d *domain) names() []string {
	out := make([]string, len(d.members))
	for i, m := range d.members {
		out[i] = m.name
	}
	return out
}

// Allowed returns the canonical values accepted for a field, in table order.
// Returns nil for an unknown field.
func Allowed(f FieldName) []string {
	d := domainOf(f)
	if d == nil {
		return nil
	}
	return d.names()
}

// ShortFlag returns the single-letter alias the device tool accepts for a
// field, or "" when only the long flag exists.
func ShortFlag(f FieldName) string {
	d := domainOf(f)
	if d == nil {
		return ""
	}
	return d.short
}

// Satellite selects the SBAS corrections source.
type Satellite byte

const (
	SatelliteAuto  Satellite = 0x00
	SatelliteEGNOS Satellite = 0x01
	SatelliteWAAS  Satellite = 0x02
	SatelliteMSAS  Satellite = 0x03
	SatelliteGAGAN Satellite = 0x04
	SatelliteSDCM  Satellite = 0x05
	SatelliteS120  Satellite = 0x06
	SatelliteS158  Satellite = 0x2D
)

// ParseSatellite matches raw case-insensitively against the satellite domain.
func ParseSatellite(raw string) (Satellite, error) {
	v, err := satelliteDomain.parse(raw)
	return Satellite(v), err
}

func (s Satellite) String() string { return nameOrUnknown(satelliteDomain, byte(s)) }

// SisMode selects test or operational signal-in-space.
type SisMode byte

const (
	SisModeTest        SisMode = 0x00
	SisModeOperational SisMode = 0x01
)

// ParseSisMode matches raw case-insensitively against the SIS mode domain.
func ParseSisMode(raw string) (SisMode, error) {
	v, err := sisModeDomain.parse(raw)
	return SisMode(v), err
}

func (m SisMode) String() string { return nameOrUnknown(sisModeDomain, byte(m)) }

// NavMode selects the navigation phase the corrections are applied for.
type NavMode byte

const (
	NavModeEnRoute      NavMode = 0x00
	NavModePrecApp      NavMode = 0x01
	NavModeMixedSystems NavMode = 0x02
)

// ParseNavMode matches raw case-insensitively against the nav mode domain.
func ParseNavMode(raw string) (NavMode, error) {
	v, err := navModeDomain.parse(raw)
	return NavMode(v), err
}

func (m NavMode) String() string { return nameOrUnknown(navModeDomain, byte(m)) }

// Do229Version selects the RTCA DO-229 revision.
type Do229Version byte

const (
	Do229Auto Do229Version = 0x00
	Do229C    Do229Version = 0x01
)

// ParseDo229Version matches raw case-insensitively against the DO-229 domain.
func ParseDo229Version(raw string) (Do229Version, error) {
	v, err := do229Domain.parse(raw)
	return Do229Version(v), err
}

func (v Do229Version) String() string { return nameOrUnknown(do229Domain, byte(v)) }

func nameOrUnknown(d *domain, v byte) string {
	if n, ok := d.name(v); ok {
		return n
	}
	return fmt.Sprintf("unknown(0x%02X)", v)
}
