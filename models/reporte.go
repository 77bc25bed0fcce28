package models

import "time"

// PresignedExport points at a generated report in object storage.
type PresignedExport struct {
	URL      string    `json:"url"`
	Archivo  string    `json:"archivo"`
	ExpiraEn time.Time `json:"expira_en"`
}
