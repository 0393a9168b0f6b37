package structs

type UploadResult struct {
	URL         string `json:"url"`
	Pathname    string `json:"pathname,omitempty"`
	ContentType string `json:"contentType,omitempty"`
}

// File is a local file picked in the admin panel.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}
