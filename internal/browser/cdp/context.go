// internal/browser/cdp/context.go
package cdp

import "context"

// CombineContext returns a context derived from primary, so it keeps the CDP
// connection values primary carries, that is also canceled when secondary is.
func CombineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)

	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}
