package models

import "time"

// Media is the metadata of an uploaded file; the binary lives in the storage backend
type Media struct {
	ID          string    `json:"id"`
	EducatorID  int       `json:"educatorId"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	Backend     string    `json:"backend"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UploadResponse is returned after a successful upload
type UploadResponse struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}
