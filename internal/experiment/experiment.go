package experiment

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/san-kum/urdfsim/internal/config"
	"github.com/san-kum/urdfsim/internal/dynamo"
	"github.com/san-kum/urdfsim/internal/physics"
	"github.com/san-kum/urdfsim/internal/sim"
	"github.com/san-kum/urdfsim/internal/urdf"
	"github.com/san-kum/urdfsim/internal/vehicle"
)

// Experiment wires one run: document, parameters, vehicle model and
// simulator. Load must succeed before Run.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	logger   zerolog.Logger
	strict   bool
	progress int

	tree      *urdf.Node
	params    *vehicle.Parameters
	vehicle   *physics.Vehicle
	simulator *sim.Simulator
	adaptive  bool
}

type Option func(*Experiment)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithStrict makes malformed elements abort the load instead of being
// skipped with a warning.
func WithStrict(strict bool) Option {
	return func(e *Experiment) { e.strict = strict }
}

// WithProgress logs reports progress lines over each run; zero disables it.
func WithProgress(reports int) Option {
	return func(e *Experiment) { e.progress = reports }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:    cfg,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = NewRegistry()
	}
	return e
}

// LoadFile loads the document at path, or cfg.Document when path is empty.
func (e *Experiment) LoadFile(path string) error {
	if path == "" {
		path = e.cfg.Document
	}
	if path == "" {
		return fmt.Errorf("no document given")
	}
	tree, err := urdf.ParseFile(path)
	if err != nil {
		return err
	}
	return e.setup(tree)
}

func (e *Experiment) Load(r io.Reader) error {
	tree, err := urdf.Parse(r)
	if err != nil {
		return err
	}
	return e.setup(tree)
}

func (e *Experiment) setup(tree *urdf.Node) error {
	ex := vehicle.NewExtractor(vehicle.WithLogger(e.logger), vehicle.WithStrict(e.strict))
	params, err := ex.Extract(tree)
	if err != nil {
		return err
	}

	v, err := physics.NewVehicle(params, e.cfg.Env())
	if err != nil {
		return err
	}

	stepper, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	_, e.adaptive = stepper.(dynamo.AdaptiveStepper)

	s := sim.New(v, stepper)
	s.SetLogger(e.logger)
	for _, m := range e.registry.DefaultMetrics(params, v) {
		s.AddMetric(m)
	}
	if e.progress > 0 {
		s.AddObserver(sim.NewProgress(e.logger, e.cfg.Start, e.cfg.End, e.progress))
	}

	e.tree = tree
	e.params = params
	e.vehicle = v
	e.simulator = s

	e.logger.Info().
		Int("links", len(params.Links)).
		Int("joints", len(params.Joints)).
		Float64("mass", params.Mass).
		Int("warnings", len(params.Warnings)).
		Msg("document loaded")

	return nil
}

// SimConfig is the integrator config for this experiment: the file settings
// plus adaptivity from the chosen integrator.
func (e *Experiment) SimConfig() dynamo.Config {
	cfg := e.cfg.SimConfig()
	cfg.Adaptive = e.adaptive
	return cfg
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not loaded")
	}

	x0, err := e.cfg.GetInitState()
	if err != nil {
		return nil, err
	}

	return e.simulator.Run(ctx, x0, e.SimConfig())
}

// RunEnsemble integrates every initial state concurrently, each run with a
// fresh stepper and fresh metrics.
func (e *Experiment) RunEnsemble(ctx context.Context, initial []dynamo.State, workers int) ([]*dynamo.Result, error) {
	if e.vehicle == nil {
		return nil, fmt.Errorf("experiment not loaded")
	}

	newStepper, err := e.registry.IntegratorFactory(e.cfg.Integrator)
	if err != nil {
		return nil, err
	}

	ens := sim.NewEnsemble(e.vehicle, newStepper, func() []dynamo.Metric {
		return e.registry.DefaultMetrics(e.params, e.vehicle)
	})
	ens.SetWorkers(workers)
	return ens.Run(ctx, initial, e.SimConfig())
}

func (e *Experiment) Config() *config.Config      { return e.cfg }
func (e *Experiment) Tree() *urdf.Node            { return e.tree }
func (e *Experiment) Params() *vehicle.Parameters { return e.params }
func (e *Experiment) Vehicle() *physics.Vehicle   { return e.vehicle }
