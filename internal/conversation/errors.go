package conversation

import "errors"

// ErrNoAmbiguity means Resolve was called with no clarification pending.
var ErrNoAmbiguity = errors.New("conversation: no pending ambiguity")
