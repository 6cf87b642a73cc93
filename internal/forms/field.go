package forms

import (
	"fmt"
	"strings"
	"sync"
)

// FieldType tags the widget a descriptor renders as.
type FieldType string

const (
	FieldInput      FieldType = "input"
	FieldTextarea   FieldType = "textarea"
	FieldPhoneInput FieldType = "phoneInput"
	FieldCheckbox   FieldType = "checkbox"
	FieldDatePicker FieldType = "datePicker"
	FieldSelect     FieldType = "select"
	FieldSkeleton   FieldType = "skeleton"
)

// Option is one choice of a select or radio group.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Image string `json:"image,omitempty"`
}

// Descriptor declares one field of a form. Descriptors are built with the
// schema and never modified afterwards.
type Descriptor struct {
	Type           FieldType
	Name           string
	Label          string
	Placeholder    string
	IconSrc        string
	IconAlt        string
	Section        string
	Options        []Option
	DateFormat     string
	ShowTimeSelect bool
	Disabled       bool
	// File marks a field whose value is an *Upload set through the upload
	// endpoint rather than a field change.
	File bool
	// RenderSkeleton draws skeleton fields. It is ignored for other types.
	RenderSkeleton func(Field) Element
}

// Field is a descriptor together with its current value and error.
type Field struct {
	Descriptor *Descriptor
	Value      any
	Error      string
}

// Icon is the optional decoration of an input.
type Icon struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Element is the rendering description of a single field.
type Element struct {
	Widget      string         `json:"widget"`
	Name        string         `json:"name"`
	Label       string         `json:"label,omitempty"`
	InlineLabel string         `json:"inlineLabel,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Icon        *Icon          `json:"icon,omitempty"`
	Value       any            `json:"value"`
	Options     []Option       `json:"options,omitempty"`
	Props       map[string]any `json:"props,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// Kind renders and coerces the values of one field type.
type Kind interface {
	Render(f Field) Element
	Coerce(raw any) (any, error)
}

// Registry maps field types to kinds.
type Registry struct {
	mu    sync.RWMutex
	kinds map[FieldType]Kind
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[FieldType]Kind)}
}

// NewDefaultRegistry returns a registry holding every built-in field type.
// Phone numbers without a calling code are read as numbers of phoneRegion.
func NewDefaultRegistry(phoneRegion string) *Registry {
	r := NewRegistry()
	r.Register(FieldInput, textKind{widget: "input"})
	r.Register(FieldTextarea, textKind{widget: "textarea"})
	r.Register(FieldSelect, selectKind{})
	r.Register(FieldPhoneInput, phoneKind{region: phoneRegion})
	r.Register(FieldCheckbox, checkboxKind{})
	r.Register(FieldDatePicker, dateKind{})
	r.Register(FieldSkeleton, skeletonKind{})
	return r
}

// Register adds or replaces the kind for t.
func (r *Registry) Register(t FieldType, k Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[t] = k
}

// Lookup returns the kind registered for t.
func (r *Registry) Lookup(t FieldType) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.kinds[t]
	return k, ok
}

// Render draws f. Unregistered field types render nothing and report false.
func (r *Registry) Render(f Field) (Element, bool) {
	if f.Descriptor == nil {
		return Element{}, false
	}
	k, ok := r.Lookup(f.Descriptor.Type)
	if !ok {
		return Element{}, false
	}
	return k.Render(f), true
}

// Coerce converts a raw value into the representation stored for d.
func (r *Registry) Coerce(d *Descriptor, raw any) (any, error) {
	k, ok := r.Lookup(d.Type)
	if !ok {
		return nil, &ConfigurationError{Field: d.Name, Reason: "unregistered field type " + string(d.Type)}
	}
	v, err := k.Coerce(raw)
	if err != nil {
		return nil, err
	}
	switch {
	case d.File:
		if v == nil {
			return (*Upload)(nil), nil
		}
		if _, ok := v.(*Upload); !ok {
			return nil, fmt.Errorf("expected a file upload, got %T", v)
		}
	case len(d.Options) > 0:
		s, err := coerceString(v)
		if err != nil {
			return nil, err
		}
		return strings.TrimSpace(s), nil
	}
	return v, nil
}
