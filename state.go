package hfsm

// A state's behavior and each of its stacked fragments implement any
// subset of the interfaces below; a missing hook is a no-op. For every
// hook the engine calls each fragment's Pre method in stacking order, then
// the behavior's own method, then each fragment's Post method.

// Guarder is the state's own guard hook
type Guarder[C any] interface {
	Guard(ctx C, ctl *Control[C])
}

// PreGuarder runs before the state's guard hook
type PreGuarder[C any] interface {
	PreGuard(ctx C, ctl *Control[C])
}

// PostGuarder runs after the state's guard hook
type PostGuarder[C any] interface {
	PostGuard(ctx C, ctl *Control[C])
}

// Enterer is the state's own entry hook
type Enterer[C any] interface {
	Enter(ctx C)
}

// PreEnterer runs before the state's entry hook
type PreEnterer[C any] interface {
	PreEnter(ctx C)
}

// PostEnterer runs after the state's entry hook
type PostEnterer[C any] interface {
	PostEnter(ctx C)
}

// Updater is the state's own update hook
type Updater[C any] interface {
	Update(ctx C, ctl *Control[C])
}

// PreUpdater runs before the state's update hook
type PreUpdater[C any] interface {
	PreUpdate(ctx C, ctl *Control[C])
}

// PostUpdater runs after the state's update hook
type PostUpdater[C any] interface {
	PostUpdate(ctx C, ctl *Control[C])
}

// Reactor is the state's own event hook
type Reactor[C, E any] interface {
	React(ev E, ctx C, ctl *Control[C])
}

// PreReactor runs before the state's event hook
type PreReactor[C, E any] interface {
	PreReact(ev E, ctx C, ctl *Control[C])
}

// PostReactor runs after the state's event hook
type PostReactor[C, E any] interface {
	PostReact(ev E, ctx C, ctl *Control[C])
}

// Exiter is the state's own exit hook
type Exiter[C any] interface {
	Exit(ctx C)
}

// PreExiter runs before the state's exit hook
type PreExiter[C any] interface {
	PreExit(ctx C)
}

// PostExiter runs after the state's exit hook
type PostExiter[C any] interface {
	PostExit(ctx C)
}

// hookTable is the flattened call pipeline of one state
type hookTable[C, E any] struct {
	guard  []func(C, *Control[C])
	enter  []func(C)
	update []func(C, *Control[C])
	react  []func(E, C, *Control[C])
	exit   []func(C)
}

// compileHooks flattens a behavior and its fragments into call order. It
// reports how many hooks were found so callers can flag values that do not
// match the machine's context or event type.
func compileHooks[C, E any](behavior any, fragments []any) (hookTable[C, E], int) {
	var t hookTable[C, E]

	for _, f := range fragments {
		if h, ok := f.(PreGuarder[C]); ok {
			t.guard = append(t.guard, h.PreGuard)
		}
		if h, ok := f.(PreEnterer[C]); ok {
			t.enter = append(t.enter, h.PreEnter)
		}
		if h, ok := f.(PreUpdater[C]); ok {
			t.update = append(t.update, h.PreUpdate)
		}
		if h, ok := f.(PreReactor[C, E]); ok {
			t.react = append(t.react, h.PreReact)
		}
		if h, ok := f.(PreExiter[C]); ok {
			t.exit = append(t.exit, h.PreExit)
		}
	}

	if behavior != nil {
		if h, ok := behavior.(Guarder[C]); ok {
			t.guard = append(t.guard, h.Guard)
		}
		if h, ok := behavior.(Enterer[C]); ok {
			t.enter = append(t.enter, h.Enter)
		}
		if h, ok := behavior.(Updater[C]); ok {
			t.update = append(t.update, h.Update)
		}
		if h, ok := behavior.(Reactor[C, E]); ok {
			t.react = append(t.react, h.React)
		}
		if h, ok := behavior.(Exiter[C]); ok {
			t.exit = append(t.exit, h.Exit)
		}
	}

	for _, f := range fragments {
		if h, ok := f.(PostGuarder[C]); ok {
			t.guard = append(t.guard, h.PostGuard)
		}
		if h, ok := f.(PostEnterer[C]); ok {
			t.enter = append(t.enter, h.PostEnter)
		}
		if h, ok := f.(PostUpdater[C]); ok {
			t.update = append(t.update, h.PostUpdate)
		}
		if h, ok := f.(PostReactor[C, E]); ok {
			t.react = append(t.react, h.PostReact)
		}
		if h, ok := f.(PostExiter[C]); ok {
			t.exit = append(t.exit, h.PostExit)
		}
	}

	n := len(t.guard) + len(t.enter) + len(t.update) + len(t.react) + len(t.exit)
	return t, n
}
