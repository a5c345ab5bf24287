package models

// UploadResourceRequest is the metadata half of a multipart upload. The file
// itself is streamed separately.
type UploadResourceRequest struct {
	Title        string       `form:"title" json:"title" validate:"required,max=255"`
	Description  *string      `form:"description" json:"description"`
	Type         ResourceType `form:"type" json:"type" validate:"required"`
	DepartmentID string       `form:"department_id" json:"department_id" validate:"required"`
	SubjectID    string       `form:"subject_id" json:"subject_id" validate:"required"`
	ModuleID     *string      `form:"module_id" json:"module_id"`
	Semester     int          `form:"semester" json:"semester" validate:"required,min=1,max=8"`
}

// VerifyResourceRequest is the moderation decision payload. Reason is
// required when the action is reject.
type VerifyResourceRequest struct {
	Action VerifyAction `json:"action" validate:"required,oneof=approve reject"`
	Reason string       `json:"reason"`
}

// RateResourceRequest is a 1 to 5 star rating with an optional review.
type RateResourceRequest struct {
	Rating int     `json:"rating" validate:"required,min=1,max=5"`
	Review *string `json:"review" validate:"omitempty,max=1000"`
}

// SetVisibilityRequest toggles the moderation axis of a resource.
type SetVisibilityRequest struct {
	Visibility ResourceVisibility `json:"visibility" validate:"required,oneof=visible hidden featured"`
	Reason     *string            `json:"reason"`
}

// ReportResourceRequest flags a resource for moderator attention.
type ReportResourceRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// AssistantChatRequest is a free-form prompt for the study assistant.
type AssistantChatRequest struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

// AssistantChatResponse carries the generated reply.
type AssistantChatResponse struct {
	Reply string `json:"reply"`
}

// SmartSearchRequest is a natural language resource query.
type SmartSearchRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

// DownloadLink is the signed, short-lived URL handed out for a download.
type DownloadLink struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}
