package types

import "fmt"

// Action is what a view hands back after presenting a duel.
type Action uint8

const (
	ChoseA Action = iota + 1
	ChoseB
	RequestHelp
	SaveAndExit
)

// Winner maps a choice action onto the duel side it selects.
// ok is false for actions that do not answer the duel.
func (a Action) Winner() (w Winner, ok bool) {
	switch a {
	case ChoseA:
		return WinnerA, true
	case ChoseB:
		return WinnerB, true
	default:
		return 0, false
	}
}

func (a Action) String() string {
	switch a {
	case ChoseA:
		return "chose_a"
	case ChoseB:
		return "chose_b"
	case RequestHelp:
		return "help"
	case SaveAndExit:
		return "save_and_exit"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}
