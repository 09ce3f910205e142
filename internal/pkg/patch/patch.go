// Package patch holds helpers for applying partial-update requests, where nil
// pointer fields mean "leave as is".
package patch

// Coalesce dereferences p when set, otherwise keeps current.
func Coalesce[T any](p *T, current T) T {
	if p == nil {
		return current
	}
	return *p
}
