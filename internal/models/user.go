package models

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePatient Role = "patient"
)

// User is the directory entry created by the quick intake form. The server
// only creates and reads users; it never edits or deletes them.
type User struct {
	BaseModel
	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone string `gorm:"size:32" json:"phone,omitempty"`
}
