// Package clock provides the import timestamp source.
package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = func() time.Time { return time.Now().UTC() }

// Now returns NowFunc()
func Now() time.Time { return NowFunc() }
