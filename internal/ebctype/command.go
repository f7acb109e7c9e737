package ebctype

// CommandSource labels which compiler recorded a command line.
type CommandSource uint8

const (
	CommandSourceClang CommandSource = iota
	CommandSourceSwift

	// NumCommandSources is the number of command slots per embedded file.
	NumCommandSources = 2
)

// String returns the metadata element name for the source.
func (s CommandSource) String() string {
	switch s {
	case CommandSourceClang:
		return "clang"
	case CommandSourceSwift:
		return "swift"
	default:
		return "unknown"
	}
}

// Valid reports whether s names one of the fixed command slots.
func (s CommandSource) Valid() bool {
	return s < NumCommandSources
}
