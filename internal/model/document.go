package model

// StoredFile is the result of uploading a case document
type StoredFile struct {
	URL         string `json:"url"`
	Key         string `json:"key"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}
