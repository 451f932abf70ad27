package ir

// Version constants written into stores and trace dumps.
const (
	// SchemaVersion is the version of the event encoding.
	SchemaVersion = "1"

	// ToolVersion is the rtype tool version.
	ToolVersion = "0.1.0"
)
