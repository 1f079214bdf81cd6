package demo

import (
	"sync"

	"github.com/facet-dev/facet/reflection"
)

var registerMu sync.Mutex

// Register installs the demo types into the reflection registry. It is safe
// to call repeatedly and after a registry reset; when the types are already
// present it does nothing.
func Register() {
	registerMu.Lock()
	defer registerMu.Unlock()
	if _, ok := reflection.GetType("Scene"); ok {
		return
	}
	registerColor()
	registerScene()
	registerArgs()
}

func init() { Register() }
