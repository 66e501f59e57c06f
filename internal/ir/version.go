package ir

// Version constants for the interchange document and engine.
const (
	// TimelineVersion is the interchange document layout version.
	TimelineVersion = "1"

	// EngineVersion is the deafbeat engine version.
	EngineVersion = "0.1.0"
)
