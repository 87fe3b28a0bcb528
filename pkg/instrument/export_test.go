package instrument

import "sync"

// ResetDefault forgets the process-wide Wrapper so the next Default call
// reads the environment again.
func ResetDefault() {
	defaultOnce = sync.Once{}
	defaultWrapper = nil
}
