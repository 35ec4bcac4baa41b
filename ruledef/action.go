package ruledef

import (
	"github.com/alecthomas/participle/v2"
)

// pushSpec is the "push:state" or "push:state/state2" operand of a '=>'
// action, matching the core's NewState-push/pop semantics where an omitted
// next-state defaults to the pushed-to state.
type pushSpec struct {
	PushState string `parser:"@Ident"`
	NextState string `parser:"( '/' @Ident )?"`
}

// action is the small grammar behind a rule line's trailing column: a bare
// rule id, or one of the three transition forms described in §6's push
// variants.
type action struct {
	RuleID int       `parser:"@Int"`
	Push   *pushSpec `parser:"( '=' '>' \"push\" ':' @@"`
	Next   string    `parser:"| '-' '>' @Ident"`
	Pop    bool      `parser:"| '<' '-' @\"pop\" )?"`
}

var actionParser = participle.MustBuild[action]()

func parseAction(text string) (*action, error) {
	return actionParser.ParseString("action", text)
}
