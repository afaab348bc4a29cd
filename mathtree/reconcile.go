package mathtree

import "log/slog"

// Reconciler refreshes macro arguments after an edit.
type Reconciler struct {
	Logger *slog.Logger
	// OnReload, if set, is called after each macro reloads its arguments.
	OnReload func(macro *MacroAtom)
}

// Walk goes from start up through its owners to the root and reloads the
// arguments of every macro on the way, nearest first. It stops at the first
// error.
func (r Reconciler) Walk(start Atom) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for atom := start; atom != nil; atom = atom.Parent() {
		macro, ok := atom.(*MacroAtom)
		if !ok {
			continue
		}
		if err := macro.ReloadArgs(); err != nil {
			return err
		}

		args, matched := macro.Args()
		logger.Debug("reloaded macro arguments",
			slog.String("command", macro.Command()),
			slog.String("args", args),
			slog.Bool("matched", matched),
		)
		if r.OnReload != nil {
			r.OnReload(macro)
		}
	}

	return nil
}

// ReconcileAncestors is Reconciler.Walk with default settings. The editing
// layer calls it with the parent of the atom it just changed.
func ReconcileAncestors(start Atom) error {
	return Reconciler{}.Walk(start)
}
