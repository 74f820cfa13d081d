package service

// RuleCode names a lending rule violation so callers can switch on the kind
// instead of matching message text.
type RuleCode string

const (
	CodeNotOwned           RuleCode = "not_owned"
	CodeAlreadyTransferred RuleCode = "already_transferred"
	CodeUnknownTarget      RuleCode = "unknown_target"
	CodeNotHeld            RuleCode = "not_held"
	CodeSelfOwnedReturn    RuleCode = "self_owned_return"
)

// RuleError is the single error kind for every lending rule violation.
// It always maps to a client error at the HTTP boundary.
type RuleError struct {
	Code    RuleCode
	Message string
}

func (e *RuleError) Error() string { return e.Message }

func ruleError(code RuleCode, message string) *RuleError {
	return &RuleError{Code: code, Message: message}
}
