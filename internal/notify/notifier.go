package notify

import (
	"fmt"

	"turfbook/pkg/logger"
)

// Notifier delivers an owner-facing message. Swappable for email, LINE or
// SMS delivery later.
type Notifier interface {
	Notify(subject, message string) error
}

// ConsoleNotifier logs notifications, the delivery channel the notifier
// worker ships with.
type ConsoleNotifier struct {
	log *logger.Logger
}

func NewConsoleNotifier(log *logger.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (c *ConsoleNotifier) Notify(subject, message string) error {
	c.log.Info("Notification", "subject", subject, "message", message)
	return nil
}

// HumanTimeRange renders a date and HH:MM pair for notification text.
func HumanTimeRange(date, start, end string) string {
	return fmt.Sprintf("%s %s - %s", date, start, end)
}
