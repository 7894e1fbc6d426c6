package runtime

import (
	uuid "github.com/satori/go.uuid"
)

// InstanceID is a fresh random identifier for this process, attached to
// its log output so multiple encapsim instances on the same host (or
// across a fleet) can be told apart.
func InstanceID() string {
	return uuid.NewV4().String()
}
