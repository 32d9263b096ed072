package validation

import (
	"strings"

	"github.com/quantora/fund-management-backend/internal/api/request"
)

// ValidateCreateInvestor validates an investor creation request.
func ValidateCreateInvestor(req request.CreateInvestorRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Name) == "" {
		errors["name"] = "name is required"
	}

	if req.Email != "" && !strings.Contains(req.Email, "@") {
		errors["email"] = "email must contain @"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
