package request

// CreateInvestorRequest is the body for opening a new investor account.
type CreateInvestorRequest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
