package cli

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/anggasct/hfsm"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	Ticks  int
	Script []string
}

// session is the context shared by the scripted states
type session struct {
	tick int
}

// scriptStep is one request a state issues the first time it updates
type scriptStep struct {
	state  string
	kind   hfsm.TransitionKind
	target string
	fired  bool
}

// parseStep reads "state=kind:target"
func parseStep(s string) (*scriptStep, error) {
	state, rest, ok := strings.Cut(s, "=")
	if !ok {
		return nil, fmt.Errorf("invalid script entry %q: expected state=kind:target", s)
	}
	kindName, target, ok := strings.Cut(rest, ":")
	if !ok || state == "" || target == "" {
		return nil, fmt.Errorf("invalid script entry %q: expected state=kind:target", s)
	}
	kind, err := hfsm.ParseTransitionKind(kindName)
	if err != nil {
		return nil, err
	}
	return &scriptStep{state: state, kind: kind, target: target}, nil
}

// scripted issues the steps bound to one state
type scripted struct {
	steps []*scriptStep
}

func (s *scripted) Update(ctx *session, ctl *hfsm.Control[*session]) {
	for _, step := range s.steps {
		if step.fired {
			continue
		}
		step.fired = true
		switch step.kind {
		case hfsm.Restart:
			ctl.ChangeTo(step.target)
		case hfsm.Resume:
			ctl.Resume(step.target)
		case hfsm.Schedule:
			ctl.Schedule(step.target)
		}
	}
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate <tree.yaml>",
		Short: "Tick a machine built from a state tree",
		Long: `Build a machine from a state tree declaration and tick it. Each script
entry state=kind:target makes the named state issue one request (restart,
resume or schedule) the first time it updates. The active configuration is
printed after start and after every tick.`,
		Example: `  hfsm simulate tree.yaml --ticks 3 --script A_1=restart:A_2 --script A_2=resume:B`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, def, err := loadDefinition(args[0])
			if err != nil {
				return err
			}
			return simulate(cmd, rootOpts, opts, def)
		},
	}

	cmd.Flags().IntVarP(&opts.Ticks, "ticks", "n", 1, "number of ticks to run")
	cmd.Flags().StringSliceVarP(&opts.Script, "script", "s", nil, "scripted request as state=kind:target (repeatable)")

	return cmd
}

func simulate(cmd *cobra.Command, rootOpts *RootOptions, opts *SimulateOptions, def *hfsm.Definition) error {
	if opts.Ticks < 0 {
		return fmt.Errorf("invalid tick count %d", opts.Ticks)
	}

	byState := make(map[string]*scripted)
	var order []string
	for _, entry := range opts.Script {
		step, err := parseStep(entry)
		if err != nil {
			return err
		}
		b, ok := byState[step.state]
		if !ok {
			b = &scripted{}
			byState[step.state] = b
			order = append(order, step.state)
		}
		b.steps = append(b.steps, step)
	}

	logger := rootOpts.logger(cmd)
	defer func() { _ = logger.Sync() }()

	machineOpts := []hfsm.Option{hfsm.WithName("simulate"), hfsm.WithLogger(logger)}
	for _, state := range order {
		machineOpts = append(machineOpts, hfsm.WithBehavior(state, byState[state]))
	}
	m, err := hfsm.NewMachine[*session, struct{}](def, machineOpts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ctx := &session{}
	if err := m.Start(ctx); err != nil {
		return err
	}
	if err := writeTick(out, rootOpts.Format, m); err != nil {
		return err
	}
	for i := 0; i < opts.Ticks; i++ {
		ctx.tick = i + 1
		if err := m.Update(ctx); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "tick %d: %v\n", ctx.tick, err)
		}
		if err := writeTick(out, rootOpts.Format, m); err != nil {
			return err
		}
	}
	return m.Stop(ctx)
}

func writeTick(w io.Writer, format string, m *hfsm.Machine[*session, struct{}]) error {
	if format == "json" {
		data, err := json.Marshal(m.Snapshot())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := fmt.Fprintf(w, "tick %d: %s\n", m.Ticks(), strings.Join(m.ActiveStates(), " "))
	return err
}
