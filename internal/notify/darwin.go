//go:build darwin

package notify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// darwinNotifier uses osascript's "display notification".
type darwinNotifier struct{}

func newPlatformNotifier() Notifier {
	return darwinNotifier{}
}

func (darwinNotifier) IsSupported() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}

func (darwinNotifier) Send(ctx context.Context, n Notification) error {
	cmd := exec.CommandContext(ctx, "osascript", "-e", appleScript(n))
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("osascript failed: %w: %s", err, out)
	}
	return nil
}

func appleScript(n Notification) string {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		escapeAppleScript(n.Body), escapeAppleScript(n.Title))
	if n.Sound {
		script += ` sound name "default"`
	}
	return script
}

// escapeAppleScript escapes backslashes and quotes for AppleScript string literals.
func escapeAppleScript(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
