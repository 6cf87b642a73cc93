package models

// IdentificationDocument is a scanned identification document kept in the
// database when STORAGE_DRIVER is "database".
type IdentificationDocument struct {
	BaseModel
	FileName string `json:"fileName" gorm:"not null"`           // Original name of the file
	FileType string `json:"fileType" gorm:"size:255;not null"`  // MIME type of the file
	Size     int64  `json:"size"`
	FileData []byte `json:"-" gorm:"not null"`
}
