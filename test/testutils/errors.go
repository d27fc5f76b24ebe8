package testutils

import "errors"

// ErrUnreachable is returned by StubProber for unreachable URLs
var ErrUnreachable = errors.New("image unreachable")
