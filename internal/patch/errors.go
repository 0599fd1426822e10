package patch

import "errors"

// ErrOverlappingEdits indicates a PatchSet whose edits overlap. Compose never
// produces one.
var ErrOverlappingEdits = errors.New("overlapping edits in patch set")

// ErrEditOutOfRange indicates an edit outside the text it is applied to.
var ErrEditOutOfRange = errors.New("edit out of range")
