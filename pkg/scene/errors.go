package scene

import "errors"

var (
	ErrSelfParent    = errors.New("node cannot be its own parent")
	ErrCycle         = errors.New("parent chain forms a cycle")
	ErrStaleHandle   = errors.New("stale or unknown node handle")
	ErrDuplicateName = errors.New("duplicate node name")
	ErrUnknownShape  = errors.New("unknown shape")
)
