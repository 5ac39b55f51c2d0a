package config

const (
	WindowWidth  = 1280
	WindowHeight = 720

	VisualRingSize = 8192

	// Knob control
	KnobStep     = 0.01
	KnobFastStep = 0.05

	// Playback defaults
	DefaultGain       = 1.0
	TransitionSeconds = 0.5
	ScreenshotDir     = "screenshots"

	// Test signal played when no file is loaded
	GeneratorFreq   = 220.0
	GeneratorAmp    = 0.6
	GeneratorPeriod = 2.0
)
