package forms

import (
	"fmt"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used when no region is configured.
const DefaultPhoneRegion = "NG"

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

func baseElement(f Field, widget string) Element {
	d := f.Descriptor
	el := Element{
		Widget:      widget,
		Name:        d.Name,
		Label:       d.Label,
		Placeholder: d.Placeholder,
		Value:       f.Value,
		Disabled:    d.Disabled,
		Error:       f.Error,
	}
	if d.IconSrc != "" {
		alt := d.IconAlt
		if alt == "" {
			alt = "ICON"
		}
		el.Icon = &Icon{Src: d.IconSrc, Alt: alt}
	}
	return el
}

func coerceString(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("expected text, got %T", raw)
}

type textKind struct {
	widget string
}

func (k textKind) Render(f Field) Element {
	return baseElement(f, k.widget)
}

func (textKind) Coerce(raw any) (any, error) {
	return coerceString(raw)
}

type selectKind struct{}

func (selectKind) Render(f Field) Element {
	el := baseElement(f, "select")
	el.Options = f.Descriptor.Options
	return el
}

func (selectKind) Coerce(raw any) (any, error) {
	s, err := coerceString(raw)
	return strings.TrimSpace(s), err
}

type phoneKind struct {
	region string
}

func (k phoneKind) Render(f Field) Element {
	el := baseElement(f, "phoneInput")
	el.Props = map[string]any{
		"defaultCountry":         k.defaultRegion(),
		"international":          true,
		"withCountryCallingCode": true,
	}
	return el
}

func (k phoneKind) defaultRegion() string {
	if k.region == "" {
		return DefaultPhoneRegion
	}
	return k.region
}

// Coerce normalizes parseable numbers to E.164. Anything else is kept as
// typed so validation can report it.
func (k phoneKind) Coerce(raw any) (any, error) {
	s, err := coerceString(raw)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	num, err := phonenumbers.Parse(s, k.defaultRegion())
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return s, nil
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

type checkboxKind struct{}

// Render keeps the label next to the box instead of above it.
func (checkboxKind) Render(f Field) Element {
	el := baseElement(f, "checkbox")
	el.InlineLabel = el.Label
	el.Label = ""
	return el
}

func (checkboxKind) Coerce(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "on", "1", "yes":
			return true, nil
		case "false", "off", "0", "no", "":
			return false, nil
		}
	}
	return nil, fmt.Errorf("expected true or false, got %v", raw)
}

type dateKind struct{}

func (dateKind) Render(f Field) Element {
	el := baseElement(f, "datePicker")
	format := f.Descriptor.DateFormat
	if format == "" {
		format = "MM/dd/yyyy"
	}
	el.Props = map[string]any{
		"dateFormat":     format,
		"showTimeSelect": f.Descriptor.ShowTimeSelect,
	}
	if t, ok := f.Value.(time.Time); ok && t.IsZero() {
		el.Value = nil
	}
	return el
}

func (dateKind) Coerce(raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("invalid date %q", s)
	}
	return nil, fmt.Errorf("expected a date, got %T", raw)
}

// skeletonKind hands rendering to the descriptor's callback and stores
// values untouched.
type skeletonKind struct{}

func (skeletonKind) Render(f Field) Element {
	if f.Descriptor.RenderSkeleton == nil {
		return Element{}
	}
	return f.Descriptor.RenderSkeleton(f)
}

func (skeletonKind) Coerce(raw any) (any, error) {
	return raw, nil
}
