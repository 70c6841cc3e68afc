//go:build linux

package notify

import (
	"context"
	"fmt"
	"os/exec"
)

// linuxNotifier shells out to notify-send.
type linuxNotifier struct{}

func newPlatformNotifier() Notifier {
	return linuxNotifier{}
}

func (linuxNotifier) IsSupported() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

func (linuxNotifier) Send(ctx context.Context, n Notification) error {
	cmd := exec.CommandContext(ctx, "notify-send", notifySendArgs(n)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("notify-send failed: %w: %s", err, out)
	}
	return nil
}

// notifySendArgs builds the argument list. Sound is a hint only; whether it
// plays depends on the notification daemon.
func notifySendArgs(n Notification) []string {
	args := []string{"--app-name=thoughts"}
	if n.Sound {
		args = append(args, "--hint=string:sound-name:message-new-instant")
	}
	return append(args, n.Title, n.Body)
}
