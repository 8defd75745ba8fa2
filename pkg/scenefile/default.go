package scenefile

import (
	"bytes"
	_ "embed"

	"github.com/taigrr/diorama/pkg/scene"
)

//go:embed chair.toml
var chairTOML []byte

// DefaultScene returns the built-in chair: eleven cubes under a "chair"
// pivot.
func DefaultScene() *scene.Scene {
	s, err := Decode(bytes.NewReader(chairTOML))
	if err != nil {
		panic("scenefile: embedded chair: " + err.Error())
	}
	return s
}

// DefaultSource returns the TOML text of the built-in chair.
func DefaultSource() []byte {
	return bytes.Clone(chairTOML)
}
