package models

import "github.com/samber/lo"

// Doctor is one entry of the fixed roster patients book with.
type Doctor struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Doctors is the roster offered by the physician select fields.
var Doctors = []Doctor{
	{Name: "John Green", Image: "/assets/images/dr-green.png"},
	{Name: "Leila Cameron", Image: "/assets/images/dr-cameron.png"},
	{Name: "David Livingston", Image: "/assets/images/dr-livingston.png"},
	{Name: "Evan Peter", Image: "/assets/images/dr-peter.png"},
	{Name: "Jane Powell", Image: "/assets/images/dr-powell.png"},
	{Name: "Alex Ramirez", Image: "/assets/images/dr-remirez.png"},
	{Name: "Jasmine Lee", Image: "/assets/images/dr-lee.png"},
	{Name: "Alyana Cruz", Image: "/assets/images/dr-cruz.png"},
	{Name: "Hardik Sharma", Image: "/assets/images/dr-sharma.png"},
}

// FindDoctor looks a doctor up by display name.
func FindDoctor(name string) (Doctor, bool) {
	return lo.Find(Doctors, func(d Doctor) bool {
		return d.Name == name
	})
}
