package pipeline

// Mode selects one of the three terminal build modes.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeHot         Mode = "hot"
	ModeProduction  Mode = "production"
)

// ParseMode maps an environment value to a Mode. Unrecognized values fall
// through to development.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeHot:
		return ModeHot
	case ModeProduction:
		return ModeProduction
	default:
		return ModeDevelopment
	}
}

func (m Mode) IsHot() bool { return m == ModeHot }

func (m Mode) IsProduction() bool { return m == ModeProduction }

func (m Mode) String() string { return string(m) }
