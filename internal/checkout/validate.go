package checkout

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[+]?[(]?[0-9]{1,4}[)]?[-\s.]?[0-9]{1,4}[-\s.]?[0-9]{1,6}$`)
)

// SubmitRequest is the order submission wire contract.
type SubmitRequest struct {
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Message   string        `json:"message,omitempty"`
	Items     []RequestItem `json:"items"`
	SessionID string        `json:"-"`
}

type RequestItem struct {
	PhotoID string `json:"photo_id"`
}

func (r *SubmitRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !emailRe.MatchString(r.Email) {
		return &ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	if !phoneRe.MatchString(r.Phone) {
		return &ValidationError{Field: "phone", Reason: "must be a valid phone number"}
	}
	if len(r.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "must not be empty"}
	}
	for _, item := range r.Items {
		if strings.TrimSpace(item.PhotoID) == "" {
			return &ValidationError{Field: "items", Reason: "photo_id must not be empty"}
		}
	}
	return nil
}

// photoIDs collapses duplicates: a photo can be bought at most once per
// order, and repeated ids must not inflate pricing or tier qualification.
func (r *SubmitRequest) photoIDs() []string {
	seen := make(map[string]bool, len(r.Items))
	ids := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		if seen[item.PhotoID] {
			continue
		}
		seen[item.PhotoID] = true
		ids = append(ids, item.PhotoID)
	}
	return ids
}
