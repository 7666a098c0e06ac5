// Package validator provides rule-based input validation.
//
// A Rule pairs a check with the error reported when it fails. Apply runs a
// list of rules and returns ValidationErrors holding every failure, so a form
// can show all problems at once:
//
//	err := validator.Apply(
//		validator.EmailShape("email", email, "Please enter a valid email address"),
//		validator.MinLenTrimmed("password", password, 3, "Password must be at least 3 characters long"),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//		// render errs
//	}
package validator
