// Package notify shows desktop notifications and plays sound cues.
package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

const (
	Title      = "Voice Input"
	ErrorTitle = "Voice Input Error"
)

// Notifier displays a desktop notification.
type Notifier interface {
	Info(title, message string) error
	Error(title, message string) error
}

// Desktop sends notifications through the platform notification service.
type Desktop struct{}

func NewDesktop() Desktop {
	beeep.AppName = Title
	return Desktop{}
}

func (Desktop) Info(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Error uses an alert, which is shown with critical urgency where the
// platform supports it.
func (Desktop) Error(title, message string) error {
	return beeep.Alert(title, message, "")
}

// Log is a Notifier that only writes to the log. It is used when
// NOTIFICATION is off.
type Log struct{}

func (Log) Info(title, message string) error {
	slog.Info(message, "component", "notify", "title", title)
	return nil
}

func (Log) Error(title, message string) error {
	slog.Error(message, "component", "notify", "title", title)
	return nil
}
