package form

// Field names recognized by Propagate.
const (
	FieldMaxHorizon = "max_horizon"
)

// Propagate re-establishes the cross-field constraints after a change
// to the named field and returns the adjusted state. It must run
// before the next read of the dependent fields, in particular before a
// snapshot is taken for submission.
//
// Invariant afterwards: hold_days <= max_horizon and
// hist_horizon <= max_horizon. Applying Propagate twice with the same
// change is a no-op the second time.
func Propagate(s State, changedField string) State {
	if changedField != FieldMaxHorizon {
		return s
	}

	if s.HoldDays > s.MaxHorizon {
		s.HoldDays = s.MaxHorizon
	}
	if s.HistHorizon > s.MaxHorizon {
		s.HistHorizon = s.MaxHorizon
	}
	return s
}
