package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRender_UnknownTypeRendersNothing(t *testing.T) {
	r := NewDefaultRegistry("")
	d := &Descriptor{Type: "hologram", Name: "x", Label: "X"}

	assert.NotPanics(t, func() {
		el, ok := r.Render(Field{Descriptor: d, Value: "v"})
		assert.False(t, ok)
		assert.Equal(t, Element{}, el)
	})

	_, ok := r.Render(Field{})
	assert.False(t, ok)
}

func TestRegistryRegister_AddsKindsWithoutEditingDispatch(t *testing.T) {
	r := NewDefaultRegistry("")
	r.Register("rating", textKind{widget: "stars"})

	el, ok := r.Render(Field{Descriptor: &Descriptor{Type: "rating", Name: "score"}, Value: "4"})
	require.True(t, ok)
	assert.Equal(t, "stars", el.Widget)
	assert.Equal(t, "4", el.Value)
}

func TestInputRender(t *testing.T) {
	r := NewDefaultRegistry("")
	d := &Descriptor{Type: FieldInput, Name: "email", Label: "Email", Placeholder: "ore234@gmail.com", IconSrc: "/assets/icons/email.svg"}

	el, ok := r.Render(Field{Descriptor: d, Value: "a@b.co", Error: "bad"})
	require.True(t, ok)
	assert.Equal(t, "input", el.Widget)
	assert.Equal(t, "Email", el.Label)
	assert.Equal(t, &Icon{Src: "/assets/icons/email.svg", Alt: "ICON"}, el.Icon)
	assert.Equal(t, "bad", el.Error)
}

func TestCheckboxRender_LabelIsInline(t *testing.T) {
	r := NewDefaultRegistry("")
	d := &Descriptor{Type: FieldCheckbox, Name: "privacyConsent", Label: "I consent to privacy policy"}

	el, ok := r.Render(Field{Descriptor: d, Value: true})
	require.True(t, ok)
	assert.Empty(t, el.Label)
	assert.Equal(t, "I consent to privacy policy", el.InlineLabel)
}

func TestSkeletonRender_DelegatesToCallback(t *testing.T) {
	r := NewDefaultRegistry("")
	var got Field
	d := &Descriptor{
		Type: FieldSkeleton,
		Name: "gender",
		RenderSkeleton: func(f Field) Element {
			got = f
			return Element{Widget: "custom", Name: f.Descriptor.Name, Value: f.Value}
		},
	}

	el, ok := r.Render(Field{Descriptor: d, Value: "Other"})
	require.True(t, ok)
	assert.Equal(t, "custom", el.Widget)
	assert.Equal(t, "Other", got.Value)

	d.RenderSkeleton = nil
	el, ok = r.Render(Field{Descriptor: d})
	assert.True(t, ok)
	assert.Equal(t, Element{}, el)
}

func TestPhoneKind(t *testing.T) {
	k := phoneKind{}

	el := k.Render(Field{Descriptor: &Descriptor{Type: FieldPhoneInput, Name: "phone"}})
	assert.Equal(t, "NG", el.Props["defaultCountry"])
	assert.Equal(t, true, el.Props["withCountryCallingCode"])

	tests := []struct {
		in   any
		want any
	}{
		{"+2348012345678", "+2348012345678"},
		{"08012345678", "+2348012345678"},
		{" ", ""},
		{nil, ""},
		{"12", "12"},
	}
	for _, tt := range tests {
		got, err := k.Coerce(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}

	_, err := k.Coerce(42)
	assert.Error(t, err)
}

func TestCheckboxCoerce(t *testing.T) {
	k := checkboxKind{}
	for in, want := range map[any]bool{true: true, false: false, "on": true, "true": true, "": false, "off": false} {
		got, err := k.Coerce(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %v", in)
	}
	got, err := k.Coerce(nil)
	require.NoError(t, err)
	assert.Equal(t, false, got)

	_, err = k.Coerce("maybe")
	assert.Error(t, err)
}

func TestDateCoerce(t *testing.T) {
	k := dateKind{}

	got, err := k.Coerce("2030-05-01T09:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 5, 1, 9, 30, 0, 0, time.UTC), got)

	got, err = k.Coerce("1990-02-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1990, 2, 14, 0, 0, 0, 0, time.UTC), got)

	got, err = k.Coerce("")
	require.NoError(t, err)
	assert.True(t, got.(time.Time).IsZero())

	_, err = k.Coerce("next tuesday")
	assert.Error(t, err)
}

func TestDateRender_ZeroIsEmpty(t *testing.T) {
	d := &Descriptor{Type: FieldDatePicker, Name: "schedule", ShowTimeSelect: true, DateFormat: "MM/dd/yyyy - h:mm aa"}
	el := dateKind{}.Render(Field{Descriptor: d, Value: time.Time{}})
	assert.Nil(t, el.Value)
	assert.Equal(t, "MM/dd/yyyy - h:mm aa", el.Props["dateFormat"])
	assert.Equal(t, true, el.Props["showTimeSelect"])
}
