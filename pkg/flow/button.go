package flow

import "fmt"

// Action is what happens when a response button is pressed.
type Action string

const (
	ActionGoto  Action = "goto"
	ActionURL   Action = "url"
	ActionPhone Action = "phone"
	ActionEmail Action = "email"
)

// Actions returns every button action in selector order.
func Actions() []Action {
	return []Action{ActionGoto, ActionURL, ActionPhone, ActionEmail}
}

// ParseAction converts a raw string into an Action.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions() {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown button action: %q", s)
}

// Label is the human readable name shown in the action selector.
func (a Action) Label() string {
	switch a {
	case ActionGoto:
		return "Go to Node"
	case ActionURL:
		return "Open URL"
	case ActionPhone:
		return "Phone Call"
	case ActionEmail:
		return "Send Email"
	}
	return string(a)
}

// TargetPlaceholder describes what the target field holds for this action.
func (a Action) TargetPlaceholder() string {
	switch a {
	case ActionGoto:
		return "Target node ID"
	case ActionURL:
		return "URL address"
	case ActionPhone:
		return "Phone number"
	case ActionEmail:
		return "Email address"
	}
	return ""
}

// Button is a response option attached to a node.
type Button struct {
	ID     string `json:"id" yaml:"id"`
	Text   string `json:"text" yaml:"text"`
	Action Action `json:"action" yaml:"action"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

// ButtonUpdate is a partial change to a button. Nil fields are kept.
type ButtonUpdate struct {
	Text   *string
	Action *Action
	Target *string
}

// Apply returns b with the non-nil fields of u merged in.
func (b Button) Apply(u ButtonUpdate) Button {
	if u.Text != nil {
		b.Text = *u.Text
	}
	if u.Action != nil {
		b.Action = *u.Action
	}
	if u.Target != nil {
		b.Target = *u.Target
	}
	return b
}
