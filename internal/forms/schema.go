package forms

import (
	"fmt"
	"time"

	"care4-server/internal/models"

	"github.com/samber/lo"
)

// Form families.
const (
	FamilyRegistration = "registration"
	FamilyAppointment  = "appointment"
)

// Registration form types. Appointment form types are the
// models.AppointmentFormType values.
const (
	TypeIntake  = "intake"
	TypePatient = "patient"
)

// Upload is a file attached to a form, such as a scanned identification document.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Schema is the resolved configuration of one form: what to render, how to
// validate it and what it starts with.
type Schema struct {
	Family      string
	Type        string
	Title       string
	Subtitle    string
	SubmitLabel string
	Danger      bool
	Fields      []Descriptor
	// Rules holds a validator tag string per field name.
	Rules map[string]string
	// Messages overrides the generated error text. Keys are "field.tag" or
	// "field" for any failure of that field.
	Messages map[string]string

	defaults map[string]any
}

// Field returns the descriptor named name.
func (s *Schema) Field(name string) (*Descriptor, bool) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], true
		}
	}
	return nil, false
}

// Defaults returns a fresh copy of the default values with seed applied on
// top. Seed keys outside the schema are ignored.
func (s *Schema) Defaults(seed map[string]any) map[string]any {
	out := make(map[string]any, len(s.defaults))
	for k, v := range s.defaults {
		out[k] = v
	}
	for k, v := range seed {
		if _, ok := s.Rules[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Sections returns the section titles in the order fields use them.
func (s *Schema) Sections() []string {
	return lo.Uniq(lo.Map(s.Fields, func(d Descriptor, _ int) string { return d.Section }))
}

type schemaKey struct {
	family string
	typ    string
}

// Resolver builds schemas by family and type and checks them against a
// field registry.
type Resolver struct {
	registry *Registry
	builders map[schemaKey]func() *Schema
}

// NewResolver returns a resolver knowing the registration and appointment families.
func NewResolver(registry *Registry) *Resolver {
	r := &Resolver{
		registry: registry,
		builders: make(map[schemaKey]func() *Schema),
	}
	r.Register(FamilyRegistration, TypeIntake, intakeSchema)
	r.Register(FamilyRegistration, TypePatient, patientSchema)
	r.Register(FamilyAppointment, string(models.FormTypeCreate), createAppointmentSchema)
	r.Register(FamilyAppointment, string(models.FormTypeSchedule), scheduleAppointmentSchema)
	r.Register(FamilyAppointment, string(models.FormTypeCancel), cancelAppointmentSchema)
	return r
}

// Register adds a schema builder. It is meant for setup, before Resolve is used.
func (r *Resolver) Register(family, typ string, build func() *Schema) {
	r.builders[schemaKey{family, typ}] = build
}

// Registry returns the field registry schemas are checked against.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve returns the schema for family and typ. Unknown combinations and
// schemas using unregistered field types fail with *ConfigurationError.
func (r *Resolver) Resolve(family, typ string) (*Schema, error) {
	build, ok := r.builders[schemaKey{family, typ}]
	if !ok {
		return nil, &ConfigurationError{Family: family, Type: typ, Reason: "unknown form"}
	}
	s := build()
	s.Family, s.Type = family, typ
	if err := r.check(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Resolver) check(s *Schema) error {
	seen := make(map[string]bool, len(s.Fields))
	for _, d := range s.Fields {
		cfgErr := &ConfigurationError{Family: s.Family, Type: s.Type, Field: d.Name}
		if seen[d.Name] {
			cfgErr.Reason = "duplicate field"
			return cfgErr
		}
		seen[d.Name] = true
		if _, ok := r.registry.Lookup(d.Type); !ok {
			cfgErr.Reason = fmt.Sprintf("unregistered field type %q", d.Type)
			return cfgErr
		}
		if d.Type == FieldSkeleton && d.RenderSkeleton == nil {
			cfgErr.Reason = "skeleton field without a renderer"
			return cfgErr
		}
		if _, ok := s.Rules[d.Name]; !ok {
			cfgErr.Reason = "field has no validation rule"
			return cfgErr
		}
	}
	for name := range s.Rules {
		if _, ok := s.defaults[name]; !ok {
			return &ConfigurationError{Family: s.Family, Type: s.Type, Field: name, Reason: "rule has no default value"}
		}
	}
	for name := range s.defaults {
		if _, ok := s.Rules[name]; !ok {
			return &ConfigurationError{Family: s.Family, Type: s.Type, Field: name, Reason: "default has no validation rule"}
		}
	}
	return nil
}

func doctorOptions() []Option {
	return lo.Map(models.Doctors, func(d models.Doctor, _ int) Option {
		return Option{Value: d.Name, Label: d.Name, Image: d.Image}
	})
}

func stringOptions(values []string) []Option {
	return lo.Map(values, func(v string, _ int) Option {
		return Option{Value: v, Label: v}
	})
}

func nameField(label string) Descriptor {
	return Descriptor{
		Type:        FieldInput,
		Name:        "name",
		Label:       label,
		Placeholder: "Bayonle Oreofe",
		IconSrc:     "/assets/icons/user.svg",
		IconAlt:     "user",
	}
}

func emailField() Descriptor {
	return Descriptor{
		Type:        FieldInput,
		Name:        "email",
		Label:       "Email",
		Placeholder: "ore234@gmail.com",
		IconSrc:     "/assets/icons/email.svg",
		IconAlt:     "email",
	}
}

func phoneField(name, label string) Descriptor {
	return Descriptor{
		Type:        FieldPhoneInput,
		Name:        name,
		Label:       label,
		Placeholder: "(234) 8062522905",
	}
}

var identityMessages = map[string]string{
	"name.required":  "Name is required",
	"name.min":       "Name must be at least 2 characters",
	"name.max":       "Name must be at most 50 characters",
	"email":          "Invalid email address",
	"phone":          "Invalid phone number",
	"phone.required": "Phone number is required",
}

func intakeSchema() *Schema {
	return &Schema{
		Title:       "Hi there 👋",
		Subtitle:    "Schedule your first appointment.",
		SubmitLabel: "Get Started",
		Fields: []Descriptor{
			nameField("Full name"),
			emailField(),
			phoneField("phone", "Phone Number"),
		},
		Rules: map[string]string{
			"name":  "required,min=2,max=50",
			"email": "required,email",
			"phone": "required,phone",
		},
		Messages: identityMessages,
		defaults: map[string]any{
			"name":  "",
			"email": "",
			"phone": "",
		},
	}
}

const (
	sectionPersonal       = "Personal Information"
	sectionMedical        = "Medical Information"
	sectionIdentification = "Identification and Verification"
	sectionConsent        = "Consent and Privacy"
)

func patientSchema() *Schema {
	personal := []Descriptor{
		nameField("Full name"),
		emailField(),
		phoneField("phone", "Phone number"),
		{Type: FieldDatePicker, Name: "birthDate", Label: "Date of Birth"},
		{
			Type:           FieldSkeleton,
			Name:           "gender",
			Label:          "Gender",
			Options:        stringOptions(models.GenderOptions),
			RenderSkeleton: renderRadioGroup,
		},
		{Type: FieldInput, Name: "address", Label: "Address", Placeholder: "14, street, new york"},
		{Type: FieldInput, Name: "occupation", Label: "Occupation", Placeholder: "Software Engineer"},
		{Type: FieldInput, Name: "emergencyContactName", Label: "Emergency Contact Name", Placeholder: "Guardian's name"},
		phoneField("emergencyContactNumber", "Emergency Contact Number"),
	}
	medical := []Descriptor{
		{Type: FieldSelect, Name: "primaryPhysician", Label: "Primary Physician", Placeholder: "select a physician", Options: doctorOptions()},
		{Type: FieldInput, Name: "insuranceProvider", Label: "Insurance provider", Placeholder: "BlueCross BlueShield"},
		{Type: FieldInput, Name: "insurancePolicyNumber", Label: "Insurance policy number", Placeholder: "123456789ABC"},
		{Type: FieldTextarea, Name: "allergies", Label: "Allergies (if any)", Placeholder: "Peanuts, pollen, etc"},
		{Type: FieldTextarea, Name: "currentMedication", Label: "Current Medication (if any)", Placeholder: "Ibuprofen 200mg, etc"},
		{Type: FieldTextarea, Name: "familyMedicalHistory", Label: "Family medical history", Placeholder: "Mother has headaches, etc"},
		{Type: FieldTextarea, Name: "pastMedicalHistory", Label: "Past medical history", Placeholder: "Appendectomy, etc"},
	}
	identification := []Descriptor{
		{Type: FieldSelect, Name: "identificationType", Label: "Identification type", Placeholder: "select a identification type", Options: stringOptions(models.IdentificationTypes)},
		{Type: FieldInput, Name: "identificationNumber", Label: "Identification number", Placeholder: "123456789"},
		{
			Type:           FieldSkeleton,
			Name:           "identificationDocument",
			Label:          "Scanned copy of identification document",
			File:           true,
			RenderSkeleton: renderFileUploader,
		},
	}
	consent := []Descriptor{
		{Type: FieldCheckbox, Name: "treatmentConsent", Label: "I consent to treatment"},
		{Type: FieldCheckbox, Name: "disclosureConsent", Label: "I consent to disclosure of information"},
		{Type: FieldCheckbox, Name: "privacyConsent", Label: "I consent to privacy policy"},
	}

	var fields []Descriptor
	for _, group := range []struct {
		section string
		fields  []Descriptor
	}{
		{sectionPersonal, personal},
		{sectionMedical, medical},
		{sectionIdentification, identification},
		{sectionConsent, consent},
	} {
		for _, d := range group.fields {
			d.Section = group.section
			fields = append(fields, d)
		}
	}

	messages := map[string]string{
		"birthDate":                      "Date of birth is required",
		"gender":                         "Select a gender",
		"address.required":               "Address is required",
		"address.min":                    "Address must be at least 5 characters",
		"address.max":                    "Address must be at most 500 characters",
		"occupation.required":            "Occupation is required",
		"occupation.min":                 "Occupation must be at least 2 characters",
		"occupation.max":                 "Occupation must be at most 500 characters",
		"emergencyContactName.required":  "Emergency contact name is required",
		"emergencyContactName.min":       "Contact name must be at least 2 characters",
		"emergencyContactName.max":       "Contact name must be at most 50 characters",
		"emergencyContactNumber":         "Invalid phone number",
		"primaryPhysician":               "Select at least one doctor",
		"insuranceProvider.required":     "Insurance provider is required",
		"insuranceProvider.min":          "Insurance name must be at least 2 characters",
		"insuranceProvider.max":          "Insurance name must be at most 50 characters",
		"insurancePolicyNumber.required": "Policy number is required",
		"insurancePolicyNumber.min":      "Policy number must be at least 2 characters",
		"insurancePolicyNumber.max":      "Policy number must be at most 50 characters",
		"treatmentConsent":               "You must consent to treatment in order to proceed",
		"disclosureConsent":              "You must consent to disclosure in order to proceed",
		"privacyConsent":                 "You must consent to privacy in order to proceed",
	}
	for k, v := range identityMessages {
		messages[k] = v
	}

	return &Schema{
		Title:       "Welcome 👋",
		Subtitle:    "Let us know more about yourself",
		SubmitLabel: "Submit and continue",
		Fields:      fields,
		Rules: map[string]string{
			"name":                   "required,min=2,max=50",
			"email":                  "required,email",
			"phone":                  "required,phone",
			"birthDate":              "required",
			"gender":                 "required,oneof=Male Female Other",
			"address":                "required,min=5,max=500",
			"occupation":             "required,min=2,max=500",
			"emergencyContactName":   "required,min=2,max=50",
			"emergencyContactNumber": "required,phone",
			"primaryPhysician":       "required,min=2",
			"insuranceProvider":      "required,min=2,max=50",
			"insurancePolicyNumber":  "required,min=2,max=50",
			"allergies":              "omitempty",
			"currentMedication":      "omitempty",
			"familyMedicalHistory":   "omitempty",
			"pastMedicalHistory":     "omitempty",
			"identificationType":     "omitempty,max=100",
			"identificationNumber":   "omitempty,max=100",
			"identificationDocument": "omitempty",
			"treatmentConsent":       "eq=true",
			"disclosureConsent":      "eq=true",
			"privacyConsent":         "eq=true",
		},
		Messages: messages,
		defaults: map[string]any{
			"name":                   "",
			"email":                  "",
			"phone":                  "",
			"birthDate":              time.Time{},
			"gender":                 models.GenderMale,
			"address":                "",
			"occupation":             "",
			"emergencyContactName":   "",
			"emergencyContactNumber": "",
			"primaryPhysician":       "",
			"insuranceProvider":      "",
			"insurancePolicyNumber":  "",
			"allergies":              "",
			"currentMedication":      "",
			"familyMedicalHistory":   "",
			"pastMedicalHistory":     "",
			"identificationType":     models.IdentificationTypes[0],
			"identificationNumber":   "",
			"identificationDocument": (*Upload)(nil),
			"treatmentConsent":       false,
			"disclosureConsent":      false,
			"privacyConsent":         false,
		},
	}
}

func physicianField() Descriptor {
	return Descriptor{
		Type:        FieldSelect,
		Name:        "primaryPhysician",
		Label:       "Doctor",
		Placeholder: "select doctor",
		Options:     doctorOptions(),
	}
}

func scheduleField() Descriptor {
	return Descriptor{
		Type:           FieldDatePicker,
		Name:           "schedule",
		Label:          "Expected appointment date",
		ShowTimeSelect: true,
		DateFormat:     "MM/dd/yyyy - h:mm aa",
	}
}

var appointmentMessages = map[string]string{
	"primaryPhysician":       "Select at least one doctor",
	"schedule":               "Select an appointment date",
	"reason.required":        "Reason is required",
	"reason.min":             "Reason must be at least 2 characters",
	"reason.max":             "Reason must be at most 500 characters",
	"cancellationReason.min": "Reason must be at least 2 characters",
	"cancellationReason.max": "Reason must be at most 500 characters",
	"cancellationReason":     "Reason for cancellation is required",
}

func appointmentFields() []Descriptor {
	return []Descriptor{
		physicianField(),
		scheduleField(),
		{Type: FieldTextarea, Name: "reason", Label: "Reason for appointment", Placeholder: "Enter reason for appointment"},
		{Type: FieldTextarea, Name: "note", Label: "Notes", Placeholder: "Enter notes"},
	}
}

func appointmentDefaults() map[string]any {
	return map[string]any{
		"primaryPhysician": "",
		"schedule":         time.Time{},
		"reason":           "",
		"note":             "",
	}
}

func createAppointmentSchema() *Schema {
	return &Schema{
		Title:       "New Appointment",
		Subtitle:    "Request a new appointment in 10 seconds.",
		SubmitLabel: "Create Appointment",
		Fields:      appointmentFields(),
		Rules: map[string]string{
			"primaryPhysician": "required,min=2",
			"schedule":         "required",
			"reason":           "required,min=2,max=500",
			"note":             "omitempty",
		},
		Messages: appointmentMessages,
		defaults: appointmentDefaults(),
	}
}

func scheduleAppointmentSchema() *Schema {
	return &Schema{
		SubmitLabel: "Schedule Appointment",
		Fields:      appointmentFields(),
		Rules: map[string]string{
			"primaryPhysician": "required,min=2",
			"schedule":         "required",
			"reason":           "omitempty",
			"note":             "omitempty",
		},
		Messages: appointmentMessages,
		defaults: appointmentDefaults(),
	}
}

func cancelAppointmentSchema() *Schema {
	return &Schema{
		SubmitLabel: "Cancel Appointment",
		Danger:      true,
		Fields: []Descriptor{
			{Type: FieldTextarea, Name: "cancellationReason", Label: "Reason for cancellation", Placeholder: "Enter reason for cancellation"},
		},
		Rules: map[string]string{
			"cancellationReason": "required,min=2,max=500",
		},
		Messages: appointmentMessages,
		defaults: map[string]any{
			"cancellationReason": "",
		},
	}
}

func renderRadioGroup(f Field) Element {
	el := baseElement(f, "radioGroup")
	el.Options = f.Descriptor.Options
	return el
}

func renderFileUploader(f Field) Element {
	el := baseElement(f, "fileUploader")
	el.Value = nil
	if up, ok := f.Value.(*Upload); ok && up != nil {
		el.Value = map[string]any{
			"fileName":    up.FileName,
			"contentType": up.ContentType,
			"size":        len(up.Data),
		}
	}
	el.Props = map[string]any{"maxFiles": 1}
	return el
}
