package forms

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// State is the lifecycle position of a form.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
	StateError
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateError:
		return "error"
	case StateSuccess:
		return "success"
	}
	return "unknown"
}

// MarshalText renders the state by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is what a successful submit produced and where the caller goes next.
type Outcome struct {
	ID       string `json:"id,omitempty"`
	Redirect string `json:"redirect,omitempty"`
	Close    bool   `json:"close,omitempty"`
}

// SubmitFunc sends validated values to the backing services.
type SubmitFunc func(ctx context.Context, values map[string]any) (Outcome, error)

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger submit failures are written to.
func WithLogger(log zerolog.Logger) ControllerOption {
	return func(c *Controller) { c.log = log }
}

// WithSeed pre-fills the defaults, e.g. from an existing appointment.
func WithSeed(seed map[string]any) ControllerOption {
	return func(c *Controller) { c.seed = seed }
}

// OnSuccess registers a callback run after a successful submit, outside the
// controller lock.
func OnSuccess(fn func(Outcome)) ControllerOption {
	return func(c *Controller) { c.onSuccess = fn }
}

// OnTransition registers a callback run on every state change while the
// controller lock is held. It must not call back into the controller.
func OnTransition(fn func(from, to State)) ControllerOption {
	return func(c *Controller) { c.onTransition = fn }
}

// Controller binds a schema and a field registry into one live form. It is
// safe for concurrent use.
type Controller struct {
	schema   *Schema
	registry *Registry
	log      zerolog.Logger
	seed     map[string]any

	onSuccess    func(Outcome)
	onTransition func(from, to State)

	mu       sync.Mutex
	state    State
	inFlight bool
	values   map[string]any
	errors   map[string]string
	// rejected holds fields whose last input could not be coerced; their
	// stored value is stale until the next valid change.
	rejected map[string]string
	lastErr  error
	outcome  *Outcome
}

// NewController returns an idle controller holding the schema defaults.
func NewController(schema *Schema, registry *Registry, opts ...ControllerOption) *Controller {
	c := &Controller{
		schema:   schema,
		registry: registry,
		log:      zerolog.Nop(),
		errors:   map[string]string{},
		rejected: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.values = schema.Defaults(c.seed)
	return c
}

// Schema returns the schema the controller was built from.
func (c *Controller) Schema() *Schema {
	return c.schema
}

func (c *Controller) transition(to State) {
	from := c.state
	c.state = to
	if c.onTransition != nil && from != to {
		c.onTransition(from, to)
	}
}

// settle moves a finished form back to Idle so it accepts new input.
func (c *Controller) settle() {
	if c.state == StateError || c.state == StateSuccess {
		c.transition(StateIdle)
	}
}

// Change sets one field from raw input and validates it. Invalid input is
// recorded as a field error, not returned. Unknown fields return a
// *ConfigurationError and changes during a submit return ErrSubmitInProgress.
func (c *Controller) Change(name string, raw any) error {
	d, ok := c.schema.Field(name)
	if !ok {
		return &ConfigurationError{Family: c.schema.Family, Type: c.schema.Type, Field: name, Reason: "unknown field"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return ErrSubmitInProgress
	}
	c.settle()
	c.transition(StateValidating)
	defer c.transition(StateIdle)

	value, err := c.registry.Coerce(d, raw)
	if err != nil {
		c.errors[name] = err.Error()
		c.rejected[name] = err.Error()
		return nil
	}
	delete(c.rejected, name)

	msg := c.schema.ValidateField(name, value)
	c.values[name] = value
	if msg != "" {
		c.errors[name] = msg
	} else {
		delete(c.errors, name)
	}
	return nil
}

// Submit validates all values and, when they pass, runs fn with a copy of
// them. Invalid values return a *ValidationError without calling fn. A
// submit arriving while another runs returns ErrSubmitInProgress.
//
// On success the form resets to its defaults and the OnSuccess callback
// runs. On failure the values are kept for a retry and the error is
// returned and remembered as LastError.
func (c *Controller) Submit(ctx context.Context, fn SubmitFunc) (Outcome, error) {
	values, err := c.begin()
	if err != nil {
		return Outcome{}, err
	}

	finished := false
	defer func() {
		if !finished {
			c.finish(Outcome{}, errSubmitAborted)
		}
	}()
	out, err := fn(ctx, values)
	finished = true

	if err := c.finish(out, err); err != nil {
		c.log.Error().Err(err).
			Str("family", c.schema.Family).
			Str("type", c.schema.Type).
			Msg("form submission failed")
		return Outcome{}, err
	}
	return out, nil
}

// begin validates the form and marks it in flight, returning the values to
// submit.
func (c *Controller) begin() (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		return nil, ErrSubmitInProgress
	}
	c.settle()
	c.transition(StateValidating)

	fields := c.schema.Validate(c.values)
	for name, msg := range c.rejected {
		if fields == nil {
			fields = map[string]string{}
		}
		fields[name] = msg
	}
	if len(fields) > 0 {
		c.errors = fields
		c.transition(StateIdle)
		return nil, &ValidationError{Fields: copyErrors(fields)}
	}

	c.errors = map[string]string{}
	c.inFlight = true
	c.lastErr = nil
	c.transition(StateSubmitting)
	return copyValues(c.values), nil
}

// finish records the result of a submit and runs the success callback.
func (c *Controller) finish(out Outcome, err error) error {
	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		c.lastErr = err
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.errors = copyErrors(verr.Fields)
		}
		c.transition(StateError)
		c.mu.Unlock()
		return err
	}

	c.values = c.schema.Defaults(c.seed)
	c.rejected = map[string]string{}
	c.outcome = &out
	c.transition(StateSuccess)
	cb := c.onSuccess
	c.mu.Unlock()

	if cb != nil {
		cb(out)
	}
	return nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// InFlight reports whether a submit is running.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastError returns the error of the last failed submit, if the form has
// not succeeded since.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Values returns a copy of the current values.
func (c *Controller) Values() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyValues(c.values)
}

// Errors returns a copy of the current field errors.
func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyErrors(c.errors)
}

// RenderedSection groups the elements of one form section.
type RenderedSection struct {
	Title    string    `json:"title,omitempty"`
	Elements []Element `json:"elements"`
}

// RenderedForm is the full rendering description of a form and its state.
type RenderedForm struct {
	Family      string            `json:"family"`
	Type        string            `json:"type"`
	Title       string            `json:"title,omitempty"`
	Subtitle    string            `json:"subtitle,omitempty"`
	SubmitLabel string            `json:"submitLabel"`
	Danger      bool              `json:"danger,omitempty"`
	Sections    []RenderedSection `json:"sections"`
	State       State             `json:"state"`
	InFlight    bool              `json:"inFlight"`
	Error       string            `json:"error,omitempty"`
	Outcome     *Outcome          `json:"outcome,omitempty"`
}

// Render describes the form as it currently stands. Fields whose type has
// no registered kind are left out.
func (c *Controller) Render() RenderedForm {
	c.mu.Lock()
	defer c.mu.Unlock()

	form := RenderedForm{
		Family:      c.schema.Family,
		Type:        c.schema.Type,
		Title:       c.schema.Title,
		Subtitle:    c.schema.Subtitle,
		SubmitLabel: c.schema.SubmitLabel,
		Danger:      c.schema.Danger,
		State:       c.state,
		InFlight:    c.inFlight,
	}
	if c.lastErr != nil {
		form.Error = c.lastErr.Error()
	}
	if c.state == StateSuccess {
		form.Outcome = c.outcome
	}

	index := map[string]int{}
	for i := range c.schema.Fields {
		d := &c.schema.Fields[i]
		el, ok := c.registry.Render(Field{Descriptor: d, Value: c.values[d.Name], Error: c.errors[d.Name]})
		if !ok {
			continue
		}
		pos, ok := index[d.Section]
		if !ok {
			pos = len(form.Sections)
			index[d.Section] = pos
			form.Sections = append(form.Sections, RenderedSection{Title: d.Section})
		}
		form.Sections[pos].Elements = append(form.Sections[pos].Elements, el)
	}
	return form
}

func copyValues(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func copyErrors(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
