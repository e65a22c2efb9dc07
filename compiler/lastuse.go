package compiler

// IsHarmless reports whether the named symbol's value may be treated as
// movable at its sole read. One linear scan over the event stream:
//
//   - a second definition, a read with no prior definition, a capture by a
//     call, or more than one plain read all disqualify the symbol;
//   - a jump target strictly between the definition and the read also
//     disqualifies it, since a later re-execution of that span would read
//     an already-moved-from value.
//
// Deliberately conservative: false negatives cost a copy, false positives
// would corrupt a live value, so there are none.
func (cfg *CFG) IsHarmless(name string) bool {
	targets := cfg.JumpTargets()

	def := -1
	uses := 0
	for i, ev := range cfg.Events {
		if ev.Name != name {
			continue
		}
		switch ev.Kind {
		case DefEvent:
			if def >= 0 {
				return false
			}
			def = i

		case UseEvent:
			if def < 0 {
				return false
			}
			uses++
			if uses > 1 {
				return false
			}
			for j := def + 1; j < i; j++ {
				if targets[j] {
					return false
				}
			}

		case UseCallEvent:
			return false
		}
	}

	return def >= 0 && uses == 1
}
