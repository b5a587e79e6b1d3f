package ezfs

// Mode describes how a File is opened. Modes are parsed from short strings in
// the native open() convention: one of "r" (read), "w" (write, create or
// truncate), "a" (append), "x" (exclusive create), optionally combined with
// "t" (text, the default) or "b" (binary).
type Mode uint8

const (
	// ModeRead opens for reading only.
	ModeRead Mode = 1 << iota
	// ModeWrite opens for writing, creating or replacing the content.
	ModeWrite
	// ModeAppend opens for writing, extending any existing content.
	ModeAppend
	// ModeCreate opens for writing and requires the path to be absent.
	ModeCreate
	// ModeBinary selects byte contents (Read/Write).
	ModeBinary
	// ModeText selects string contents (ReadText/WriteString).
	ModeText
)

// ParseMode parses a mode string such as "rt", "wb", or "a".
//
// Exactly one of r/w/a/x is required; t and b are mutually exclusive and t is
// assumed when neither is present.
func ParseMode(s string) (Mode, error) {
	var m Mode
	for _, ch := range s {
		switch ch {
		case 'r':
			m |= ModeRead
		case 'w':
			m |= ModeWrite
		case 'a':
			m |= ModeAppend
		case 'x':
			m |= ModeCreate
		case 't':
			m |= ModeText
		case 'b':
			m |= ModeBinary
		default:
			return 0, &InvalidModeError{Mode: s}
		}
	}

	switch access := m & (ModeRead | ModeWrite | ModeAppend | ModeCreate); access {
	case ModeRead, ModeWrite, ModeAppend, ModeCreate:
	default:
		// Zero or more than one access flag.
		return 0, &InvalidModeError{Mode: s}
	}
	if m&ModeText != 0 && m&ModeBinary != 0 {
		return 0, &InvalidModeError{Mode: s}
	}
	if m&ModeBinary == 0 {
		m |= ModeText
	}
	return m, nil
}

func (m Mode) readable() bool { return m&ModeRead != 0 }

func (m Mode) writable() bool { return m&(ModeWrite|ModeAppend|ModeCreate) != 0 }

func (m Mode) text() bool { return m&ModeText != 0 }

// String renders the mode back in its short form.
func (m Mode) String() string {
	var s string
	switch {
	case m&ModeRead != 0:
		s = "r"
	case m&ModeWrite != 0:
		s = "w"
	case m&ModeAppend != 0:
		s = "a"
	case m&ModeCreate != 0:
		s = "x"
	}
	if m&ModeBinary != 0 {
		return s + "b"
	}
	return s + "t"
}
