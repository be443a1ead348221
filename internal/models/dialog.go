package models

import "fmt"

// Action is the outcome of one dialog turn. The set is closed: every switch over
// Action lists all values and panics on anything else.
type Action uint8

const (
	ActionUnknown Action = iota
	ActionAddedToCart
	ActionConfirmCheapest
	ActionShowResults
	ActionSelectProduct
	ActionNoResults
	ActionInvalidSelection
	ActionError
)

var actionNames = [...]string{
	ActionUnknown:          "",
	ActionAddedToCart:      "added_to_cart",
	ActionConfirmCheapest:  "confirm_cheapest",
	ActionShowResults:      "show_search_results",
	ActionSelectProduct:    "select_product",
	ActionNoResults:        "no_results",
	ActionInvalidSelection: "invalid_selection",
	ActionError:            "error",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	return ActionUnknown, fmt.Errorf("unknown action %q", s)
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText maps unrecognized names to ActionUnknown; a stale client must not
// break the turn.
func (a *Action) UnmarshalText(text []byte) error {
	v, _ := ParseAction(string(text))
	*a = v
	return nil
}

// Success reports whether the turn completed the user's request or asked a
// well-formed follow-up question.
func (a Action) Success() bool {
	switch a {
	case ActionAddedToCart, ActionConfirmCheapest, ActionShowResults, ActionSelectProduct:
		return true
	case ActionUnknown, ActionNoResults, ActionInvalidSelection, ActionError:
		return false
	default:
		panic(fmt.Sprintf("unhandled action %d", a))
	}
}

type DialogRequest struct {
	UserMessage      string   `json:"user_message"`
	CartID           string   `json:"cart_id,omitempty"`
	LastAction       Action   `json:"last_action,omitempty"`
	Sources          []string `json:"sources,omitempty"`
	ProductSelection *int     `json:"product_selection,omitempty"`
	SelectedProduct  *Product `json:"selected_product,omitempty"`
	Quantity         int      `json:"quantity,omitempty" validate:"gte=0"`
	Fingerprint      string   `json:"fingerprint,omitempty"`
	LastQuery        string   `json:"last_query,omitempty"`
}

type DialogResponse struct {
	Success     bool          `json:"success"`
	Action      Action        `json:"action"`
	Message     string        `json:"message"`
	CartID      *string       `json:"cart_id,omitempty"`
	Data        []Product     `json:"data"`
	Groups      []SourceGroup `json:"groups,omitempty"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Query       string        `json:"query,omitempty"`
	Tier        Tier          `json:"tier,omitempty"`
}
