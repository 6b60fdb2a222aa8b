package game

import "fmt"

// Rule violation codes. These travel over the wire in error payloads, so
// they are stable strings rather than iota constants.
const (
	CodeWrongPhase          = "WRONG_PHASE"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeCardNotInHand       = "CARD_NOT_IN_HAND"
	CodeMustFollowSuit      = "MUST_FOLLOW_SUIT"
	CodeMustPlayTrump       = "MUST_PLAY_TRUMP"
	CodeMustPlayHighest     = "MUST_PLAY_HIGHEST"
	CodeJokerOptionRequired = "JOKER_OPTION_REQUIRED"
	CodeJokerSuitRequired   = "JOKER_SUIT_REQUIRED"
	CodeJokerOptionInvalid  = "JOKER_OPTION_INVALID"
	CodeBetNegative         = "BET_NEGATIVE"
	CodeBetTooHigh          = "BET_TOO_HIGH"
	CodeForbiddenBet        = "FORBIDDEN_BET"
	CodeRedealNotAllowed    = "REDEAL_NOT_ALLOWED"
	CodeNotChooser          = "NOT_CHOOSER"
	CodeRateLimited         = "RATE_LIMITED"
)

// RuleError is a rejected action: a machine-readable code plus a human
// message. Rule errors never mutate state and are surfaced only to the
// offending connection.
type RuleError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewRuleError builds a RuleError with a formatted message.
func NewRuleError(code, format string, args ...any) *RuleError {
	return &RuleError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsRuleError unwraps err into a *RuleError if it is one.
func AsRuleError(err error) (*RuleError, bool) {
	re, ok := err.(*RuleError)
	return re, ok
}
