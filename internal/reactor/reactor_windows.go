//go:build windows

package reactor

// prepare is a no-op on Windows; pipe handles are used synchronously.
func prepare(uintptr) error {
	return nil
}
