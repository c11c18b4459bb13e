package editor

import "fmt"

// Mode is the editor's behavioural state.
type Mode uint8

const (
	// CleanUnsaved: no edits since creation, no file name.
	CleanUnsaved Mode = iota
	// DirtyUnsaved: edited, no file name.
	DirtyUnsaved
	// CleanSaved: buffer matches what was last written to the file name.
	CleanSaved
	// DirtySaved: buffer has diverged since the last write.
	DirtySaved

	numModes
)

var modeNames = [numModes]string{
	CleanUnsaved: "clean-unsaved",
	DirtyUnsaved: "dirty-unsaved",
	CleanSaved:   "clean-saved",
	DirtySaved:   "dirty-saved",
}

func (m Mode) String() string {
	if m < numModes {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Saved reports whether the mode carries a file name.
func (m Mode) Saved() bool {
	return m == CleanSaved || m == DirtySaved
}

// Dirty reports whether the buffer has unsaved edits.
func (m Mode) Dirty() bool {
	return m == DirtyUnsaved || m == DirtySaved
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m >= numModes {
		return nil, fmt.Errorf("editor: unknown mode %d", uint8(m))
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	for i, name := range modeNames {
		if name == string(b) {
			*m = Mode(i)
			return nil
		}
	}
	return fmt.Errorf("editor: unknown mode %q", b)
}

// Label renders the display label for a mode and file name.
func Label(m Mode, filename string) string {
	switch m {
	case DirtyUnsaved:
		return "*"
	case CleanSaved:
		return filename
	case DirtySaved:
		return filename + " *"
	default:
		return "_"
	}
}

// Op names one of the five editor operations.
type Op uint8

const (
	OpEdit Op = iota
	OpSave
	OpSaveAs
	OpNewFile
	OpOpen

	numOps
)

var opNames = [numOps]string{
	OpEdit:    "edit",
	OpSave:    "save",
	OpSaveAs:  "save_as",
	OpNewFile: "new_file",
	OpOpen:    "open",
}

func (o Op) String() string {
	if o < numOps {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
