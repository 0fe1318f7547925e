//go:build !windows && !linux

package inject

// Stub for platforms without an injection backend.

// NewInjector reports that injection is unavailable here.
func NewInjector() (Injector, error) {
	return nil, ErrUnsupportedPlatform
}
