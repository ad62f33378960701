package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"campus/internal/ui/theme"
)

// Field is a labeled text input for login/registration forms.
type Field struct {
	Label string
	Model textinput.Model
}

// NewField creates a styled form field. Secret fields mask their input.
func NewField(label, placeholder string, secret bool) Field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 150
	if secret {
		ti.EchoMode = textinput.EchoPassword
	}
	return Field{
		Label: label,
		Model: ti,
	}
}

// Focus gives the field keyboard focus.
func (f *Field) Focus() tea.Cmd {
	return f.Model.Focus()
}

// Blur removes keyboard focus.
func (f *Field) Blur() {
	f.Model.Blur()
}

// Update forwards messages to the underlying input.
func (f Field) Update(msg tea.Msg) (Field, tea.Cmd) {
	var cmd tea.Cmd
	f.Model, cmd = f.Model.Update(msg)
	return f, cmd
}

// Value returns the current input value.
func (f Field) Value() string {
	return f.Model.Value()
}

// View renders the label and input, highlighting the focused field.
func (f Field) View() string {
	label := theme.InputLabel.Render(f.Label)
	if f.Model.Focused() {
		label = theme.InputLabelFocused.Render(f.Label)
	}
	return label + "\n" + f.Model.View()
}
