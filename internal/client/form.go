package client

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/charlesng35/formstore/pkg/response"
)

// Messages shown by the form.
const (
	MessageValueRequired   = "Por favor, ingresa un valor"
	MessageSaved           = "Dato guardado exitosamente!"
	MessageSaveFailed      = "Error al guardar el dato"
	MessageConnectionError = "Error de conexión con el servidor"
)

// FormState is a snapshot of the form.
type FormState struct {
	Input      string
	Message    string
	Submitting bool
}

// Submitter persists one value. *Client implements it.
type Submitter interface {
	CreateEntry(ctx context.Context, value string) (response.Created, error)
}

// Form is a single-field form submitting values through a Submitter.
type Form struct {
	submitter Submitter

	mu       sync.Mutex
	state    FormState
	onChange []func(FormState)
}

// NewForm returns an empty form bound to submitter.
func NewForm(submitter Submitter) *Form {
	return &Form{submitter: submitter}
}

// State returns the current form state.
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Input returns the current input text.
func (f *Form) Input() string { return f.State().Input }

// Message returns the status message.
func (f *Form) Message() string { return f.State().Message }

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool { return f.State().Submitting }

// OnChange registers fn to be called with every new state.
func (f *Form) OnChange(fn func(FormState)) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	f.onChange = append(f.onChange, fn)
	f.mu.Unlock()
}

// SetInput replaces the input text. Ignored while a submission is in flight.
func (f *Form) SetInput(value string) {
	f.update(func(s *FormState) bool {
		if s.Submitting {
			return false
		}
		s.Input = value
		return true
	})
}

// Submit sends the current input. Blank input is rejected without a request.
// Submitting is reset on every exit path.
func (f *Form) Submit(ctx context.Context) {
	var value string
	started := f.update(func(s *FormState) bool {
		if s.Submitting {
			return false
		}
		if strings.TrimSpace(s.Input) == "" {
			s.Message = MessageValueRequired
			return true
		}
		value = s.Input
		s.Submitting = true
		s.Message = ""
		return true
	})
	if !started || value == "" {
		return
	}

	// Anything but a clean return, a panic included, keeps the input.
	message := MessageSaveFailed
	clearInput := false
	defer func() {
		f.update(func(s *FormState) bool {
			s.Submitting = false
			s.Message = message
			if clearInput {
				s.Input = ""
			}
			return true
		})
	}()

	if _, err := f.submitter.CreateEntry(ctx, value); err != nil {
		message = submitErrorMessage(err)
		return
	}
	message = MessageSaved
	clearInput = true
}

func submitErrorMessage(err error) string {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return MessageConnectionError
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return MessageSaveFailed
}

func (f *Form) update(fn func(*FormState) bool) bool {
	f.mu.Lock()
	if !fn(&f.state) {
		f.mu.Unlock()
		return false
	}
	state := f.state
	observers := slices.Clone(f.onChange)
	f.mu.Unlock()

	for _, observer := range observers {
		observer(state)
	}
	return true
}
