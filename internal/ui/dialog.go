package ui

import (
	"context"
	"sync"
)

// Dialog button actions used by Confirm and Alert.
const (
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
	ActionOK      = "ok"
)

// DialogButton is one button in a dialog footer.
type DialogButton struct {
	Label   string
	Action  string
	Primary bool
}

// Dialog is a modal awaiting a single answer. The result is the action id of
// the clicked button, or nil when the backdrop dismissed it.
type Dialog struct {
	Title   string
	Content string
	Buttons []DialogButton

	once   sync.Once
	done   chan struct{}
	result *string
}

// NewDialog builds an unresolved dialog.
func NewDialog(title, content string, buttons []DialogButton) *Dialog {
	return &Dialog{Title: title, Content: content, Buttons: buttons, done: make(chan struct{})}
}

// Confirm builds a cancel/confirm dialog.
func Confirm(title, message string) *Dialog {
	return NewDialog(title, message, []DialogButton{
		{Label: "إلغاء", Action: ActionCancel},
		{Label: "تأكيد", Action: ActionConfirm, Primary: true},
	})
}

// Alert builds a dialog with a single OK button.
func Alert(title, message string) *Dialog {
	return NewDialog(title, message, []DialogButton{{Label: "حسناً", Action: ActionOK, Primary: true}})
}

// Resolve answers the dialog with a button action. Unknown actions and
// answers after the first are ignored.
func (d *Dialog) Resolve(action string) bool {
	for _, b := range d.Buttons {
		if b.Action == action {
			a := action
			return d.settle(&a)
		}
	}
	return false
}

// DismissBackdrop closes the dialog without an answer.
func (d *Dialog) DismissBackdrop() bool {
	return d.settle(nil)
}

// HandleKey maps Escape to cancel, or to a backdrop dismissal when the dialog
// has no cancel button.
func (d *Dialog) HandleKey(key string) bool {
	if key != "Escape" {
		return false
	}
	if d.Resolve(ActionCancel) {
		return true
	}
	return d.DismissBackdrop()
}

func (d *Dialog) settle(result *string) bool {
	settled := false
	d.once.Do(func() {
		d.result = result
		close(d.done)
		settled = true
	})
	return settled
}

// Done is closed once the dialog is answered.
func (d *Dialog) Done() <-chan struct{} {
	return d.done
}

// Result returns the answer and whether the dialog has been answered.
func (d *Dialog) Result() (*string, bool) {
	select {
	case <-d.done:
		return d.result, true
	default:
		return nil, false
	}
}

// Wait blocks until the dialog is answered or ctx ends.
func (d *Dialog) Wait(ctx context.Context) (*string, error) {
	select {
	case <-d.done:
		return d.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Confirmed reports whether the confirm button was chosen.
func (d *Dialog) Confirmed() bool {
	result, ok := d.Result()
	return ok && result != nil && *result == ActionConfirm
}
