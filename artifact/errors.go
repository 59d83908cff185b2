package artifact

import "errors"

// ErrNotFound reports that no artifact exists for the session/id pair.
var ErrNotFound = errors.New("artifact not found")
