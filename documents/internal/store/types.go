package store

// Submission status values.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// User is a workflow participant.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	IsHOD         bool   `json:"is_hod"`
	SignaturePath string `json:"-"`
	CreatedAt     int64  `json:"created_at"`
}

// Template is an uploaded DOCX template.
type Template struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FilePath   string `json:"-"`
	UploadedBy string `json:"uploaded_by"`
	CreatedAt  int64  `json:"created_at"`
}

// Placeholder is one catalog row for a template.
type Placeholder struct {
	TemplateID string `json:"-"`
	Name       string `json:"name"`
	Token      string `json:"token"`
	Type       string `json:"type"`
	Example    string `json:"example,omitempty"`
}

// GeneratedDocument records a document produced from a template.
type GeneratedDocument struct {
	ID         string `json:"id"`
	TemplateID string `json:"template_id"`
	CreatedBy  string `json:"created_by"`
	Format     string `json:"format"`
	FilePath   string `json:"-"`
	ValuesJSON string `json:"-"`
	CreatedAt  int64  `json:"created_at"`
}

// Submission is a PDF awaiting or past HOD review.
type Submission struct {
	ID              string `json:"id"`
	TemplateID      string `json:"template_id"`
	SubmittedBy     string `json:"submitted_by"`
	FilePath        string `json:"-"`
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	ReviewedBy      string `json:"reviewed_by,omitempty"`
	SubmittedAt     int64  `json:"submitted_at"`
	ReviewedAt      int64  `json:"reviewed_at,omitempty"`
}

// ApprovedDocument is the signed PDF produced by an approval.
type ApprovedDocument struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submission_id"`
	FilePath     string `json:"-"`
	SignedBy     string `json:"signed_by"`
	CreatedAt    int64  `json:"created_at"`
}

// Notification is a per-user workflow event message.
type Notification struct {
	ID         string `json:"id"`
	UserID     string `json:"-"`
	Sender     string `json:"sender,omitempty"`
	Message    string `json:"message"`
	EntityKind string `json:"entity_kind,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Read       bool   `json:"read"`
	CreatedAt  int64  `json:"created_at"`
}
