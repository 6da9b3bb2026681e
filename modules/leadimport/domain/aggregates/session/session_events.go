package session

// CreatedEvent fires when an upload opens a new import session.
type CreatedEvent struct {
	Result Session
}

// ExecutedEvent fires after an execution run finishes, successful or not.
type ExecutedEvent struct {
	Result Session
}

// DeletedEvent fires when a session is removed.
type DeletedEvent struct {
	Result Session
}
