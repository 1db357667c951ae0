package entities

// IntentCategory classifies what the user wants from a turn.
type IntentCategory string

const (
	IntentVoiceCommand IntentCategory = "voice_command"
	IntentAskResume    IntentCategory = "ask_resume"
	IntentQuery        IntentCategory = "query"
	IntentSmallTalk    IntentCategory = "small_talk"
)

// Intent is the router's classification of user text. It is transient: only
// command/resume intents are persisted, as router-role messages.
type Intent struct {
	Category IntentCategory `json:"category"`
	Command  string         `json:"command,omitempty"`
	Args     map[string]any `json:"args,omitempty"`
}

// DefaultIntent is the named safe-degradation policy for the router: when the
// model's output cannot be parsed, classification falls back to a plain query
// so a malformed routing answer never blocks the turn.
func DefaultIntent() Intent {
	return Intent{Category: IntentQuery}
}

// ShortCircuits reports whether this intent terminates the turn at
// classification, without generating a spoken answer.
func (i Intent) ShortCircuits() bool {
	return i.Category == IntentVoiceCommand || i.Category == IntentAskResume
}

// EventType maps a short-circuiting intent to its analytics event type.
func (i Intent) EventType() AnalyticsEventType {
	if i.Category == IntentAskResume {
		return EventAskResume
	}
	return EventVoiceCommand
}

// Normalize coerces unknown categories to the default. Router output goes
// through here so downstream code only ever sees the four known categories.
func (i Intent) Normalize() Intent {
	switch i.Category {
	case IntentVoiceCommand, IntentAskResume, IntentQuery, IntentSmallTalk:
		return i
	default:
		return DefaultIntent()
	}
}
