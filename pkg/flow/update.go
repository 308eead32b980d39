package flow

import "slices"

// NodeUpdate is a partial change to a node. Nil fields are left as they
// are, so an update that only sets Data.Title keeps the content, buttons
// and position untouched.
type NodeUpdate struct {
	Position *Position
	Data     *DataUpdate
}

// DataUpdate is a partial change to a node's data.
type DataUpdate struct {
	Title        *string
	Content      *string
	Buttons      *[]Button
	QuickActions *[]string
}

// MoveTo builds an update that only changes the position.
func MoveTo(p Position) NodeUpdate {
	return NodeUpdate{Position: &p}
}

// SetTitle builds an update that only changes the title.
func SetTitle(title string) NodeUpdate {
	return NodeUpdate{Data: &DataUpdate{Title: &title}}
}

// SetContent builds an update that only changes the content.
func SetContent(content string) NodeUpdate {
	return NodeUpdate{Data: &DataUpdate{Content: &content}}
}

// SetButtons builds an update that replaces the button list.
func SetButtons(buttons []Button) NodeUpdate {
	b := slices.Clone(buttons)
	return NodeUpdate{Data: &DataUpdate{Buttons: &b}}
}

// SetQuickActions builds an update that replaces the quick action list.
func SetQuickActions(actions []string) NodeUpdate {
	a := slices.Clone(actions)
	return NodeUpdate{Data: &DataUpdate{QuickActions: &a}}
}

// Apply returns a copy of n with u merged in.
func (n Node) Apply(u NodeUpdate) Node {
	out := n.Clone()
	if u.Position != nil {
		out.Position = *u.Position
	}
	if d := u.Data; d != nil {
		if d.Title != nil {
			out.Data.Title = *d.Title
		}
		if d.Content != nil {
			out.Data.Content = *d.Content
		}
		if d.Buttons != nil {
			out.Data.Buttons = slices.Clone(*d.Buttons)
		}
		if d.QuickActions != nil {
			out.Data.QuickActions = slices.Clone(*d.QuickActions)
		}
	}
	return out
}
