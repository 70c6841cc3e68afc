//go:build !darwin && !linux

package notify

// No native back-end; New falls back to the no-op notifier.
func newPlatformNotifier() Notifier {
	return nil
}
