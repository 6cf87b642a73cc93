package models

import "time"

// Gender values offered by the registration form.
const (
	GenderMale   = "Male"
	GenderFemale = "Female"
	GenderOther  = "Other"
)

// GenderOptions lists the radio options of the gender field.
var GenderOptions = []string{GenderMale, GenderFemale, GenderOther}

// IdentificationTypes lists the accepted identification documents.
var IdentificationTypes = []string{
	"Birth Certificate",
	"Driver's License",
	"Medical Insurance Card/Policy",
	"Military ID Card",
	"National Identity Card",
	"Passport",
	"Resident Alien Card (Green Card)",
	"Social Security Card",
	"State ID Card",
	"Student ID Card",
	"Voter ID Card",
}

// Patient is created once per user by the registration form and is
// referenced by appointments through PatientID.
type Patient struct {
	BaseModel
	UserID string `gorm:"size:36;uniqueIndex;not null" json:"userId"`

	// Identity
	Name                   string    `gorm:"size:100;not null" json:"name"`
	Email                  string    `gorm:"size:255;not null" json:"email"`
	Phone                  string    `gorm:"size:32" json:"phone"`
	BirthDate              time.Time `json:"birthDate"`
	Gender                 string    `gorm:"size:10" json:"gender"`
	Address                string    `gorm:"size:500" json:"address"`
	Occupation             string    `gorm:"size:500" json:"occupation"`
	EmergencyContactName   string    `gorm:"size:100" json:"emergencyContactName"`
	EmergencyContactNumber string    `gorm:"size:32" json:"emergencyContactNumber"`

	// Medical
	PrimaryPhysician      string `gorm:"size:100" json:"primaryPhysician"`
	InsuranceProvider     string `gorm:"size:100" json:"insuranceProvider"`
	InsurancePolicyNumber string `gorm:"size:100" json:"insurancePolicyNumber"`
	Allergies             string `gorm:"type:text" json:"allergies,omitempty"`
	CurrentMedication     string `gorm:"type:text" json:"currentMedication,omitempty"`
	FamilyMedicalHistory  string `gorm:"type:text" json:"familyMedicalHistory,omitempty"`
	PastMedicalHistory    string `gorm:"type:text" json:"pastMedicalHistory,omitempty"`

	// Identification
	IdentificationType        string `gorm:"size:100" json:"identificationType,omitempty"`
	IdentificationNumber      string `gorm:"size:100" json:"identificationNumber,omitempty"`
	IdentificationDocumentID  string `gorm:"size:255" json:"identificationDocumentId,omitempty"`
	IdentificationDocumentURL string `gorm:"size:1024" json:"identificationDocumentUrl,omitempty"`

	// Consent
	TreatmentConsent  bool `json:"treatmentConsent"`
	DisclosureConsent bool `json:"disclosureConsent"`
	PrivacyConsent    bool `json:"privacyConsent"`
}
