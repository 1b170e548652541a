package models

// SignupRequest is the body of POST /api/subscribe
type SignupRequest struct {
	Email string `json:"email" binding:"required,contains=@"`
}

// InterestRequest is the body of POST /api/coach-interest
type InterestRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email" binding:"required,contains=@"`
	Background string `json:"background,omitempty"`
	Why        string `json:"why,omitempty"`
	Role       string `json:"role,omitempty"`
}

// MessageResponse is returned on success
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is returned on failure
type ErrorResponse struct {
	Error string `json:"error"`
}

// Outcome classifies what happened to a submission.
type Outcome string

const (
	OutcomeAcceptedNew       Outcome = "accepted-new"
	OutcomeAcceptedDuplicate Outcome = "accepted-duplicate"
	OutcomeRejectedInvalid   Outcome = "rejected-invalid"
	OutcomeFailedUpstream    Outcome = "failed-upstream"
)

// Roles offered on the crew interest form. The handler accepts any value.
var Roles = map[string]string{
	"":                "Not sure yet",
	"lead-coach":      "Lead Coach",
	"maker-assistant": "Maker Lab Assistant",
	"volunteer":       "Volunteer",
	"multiple":        "Open to multiple roles",
}

// RoleLabel returns the display label for a role value, or the value itself
// when it is not one of the known roles.
func RoleLabel(role string) string {
	if label, ok := Roles[role]; ok {
		return label
	}
	return role
}
