package port

// Notifier shows short-lived messages to the shopper.
type Notifier interface {
	Error(message string)
}
