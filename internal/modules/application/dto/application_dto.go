package dto

// ApplyInput optionally updates the student's contact details while applying.
// The resume reference is read from resumeUrl, with resume_url accepted too.
type ApplyInput struct {
	Phone          string `json:"phone" binding:"omitempty,max=30"`
	ResumeURL      string `json:"resumeUrl" binding:"omitempty,max=2048"`
	ResumeURLSnake string `json:"resume_url" binding:"omitempty,max=2048"`
}

// Resume returns the resume reference, preferring resumeUrl.
func (in ApplyInput) Resume() string {
	if in.ResumeURL != "" {
		return in.ResumeURL
	}
	return in.ResumeURLSnake
}

// UpdateStatusInput leaves the status unchanged when Status is empty.
type UpdateStatusInput struct {
	Status  string  `json:"status"`
	Message *string `json:"message" binding:"omitempty,max=2000"`
}
