package world

// WorldStatus is the lifecycle state of the whole world.
type WorldStatus byte

const (
	WorldStarting WorldStatus = iota
	WorldOpen
	WorldClosed
)

// Light bands the world clock maps the in-game hour onto.
const (
	LightLevelDay   uint8 = 250
	LightLevelDusk  uint8 = 130
	LightLevelNight uint8 = 40

	LightColorWhite uint8 = 215
	LightColorAmber uint8 = 208
)

// WorldInformation is the single mutable record describing ambient world
// state. Exactly one writer exists: the world-clock event running on the
// orchestrator's consuming goroutine. Everyone else receives copies.
type WorldInformation struct {
	Status     WorldStatus
	LightLevel uint8
	LightColor uint8
}

// LightBandFor maps an in-game minute-of-hour to the ambient light band.
// The hour is split into fixed thresholds: dawn, day, dusk, night.
func LightBandFor(minute int) (level, color uint8) {
	switch {
	case minute < 5: // dawn
		return LightLevelDusk, LightColorAmber
	case minute < 30: // day
		return LightLevelDay, LightColorWhite
	case minute < 35: // dusk
		return LightLevelDusk, LightColorAmber
	default: // night
		return LightLevelNight, LightColorWhite
	}
}
