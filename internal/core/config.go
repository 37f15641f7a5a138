package core

// RuntimeConfig contains host settings passed to the engine's frame driver.
// The game rules themselves live in config.Config.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Frames per second driven by the host (default 60)
	Seed     int64 // RNG seed for gap placement, 0 means time based
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// FrameMillis returns the nominal frame duration in milliseconds.
func (c RuntimeConfig) FrameMillis() float64 {
	if c.TickRate <= 0 {
		return 1000.0 / 60.0
	}
	return 1000.0 / float64(c.TickRate)
}
