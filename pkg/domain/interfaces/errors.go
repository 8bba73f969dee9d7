package interfaces

import "errors"

// ErrNotFound is returned by every repository backend when a requested
// entity does not exist in the organization's scope. Callers match it
// with errors.Is without importing a concrete backend.
var ErrNotFound = errors.New("not found")
