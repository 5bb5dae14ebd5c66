// pkg/engine/orchestrator.go
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hkhalifa/dftimewolf/pkg/recipe"
)

// Status is the per-node scheduling state.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusRunning
	StatusSucceeded
	StatusFailed
	StatusSkipped
)

// String returns the string representation of the Status value.
func (s Status) String() string {
	return [...]string{"Pending", "Ready", "Running", "Succeeded", "Failed", "Skipped"}[s]
}

type nodeState struct {
	node    *Node
	module  Module
	status  Status
	err     error
	cause   string
	output  interface{}
	started time.Time
	ended   time.Time
}

// Orchestrator executes a recipe graph: preflights first, then modules in
// dependency order, running independent ready nodes concurrently. The run
// state table is shared between executor goroutines and is guarded by a
// mutex; module execution contexts share nothing except the explicit
// output-propagation edges.
type Orchestrator struct {
	recipe   *recipe.Recipe
	graph    *Graph
	argTable map[string]interface{}
	runID    string
	logger   zerolog.Logger

	sem chan struct{} // nil means unbounded

	mu     sync.Mutex
	states map[string]*nodeState
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxConcurrent caps the number of module executions in flight at
// once. Zero or negative means unbounded.
func WithMaxConcurrent(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.sem = make(chan struct{}, n)
		}
	}
}

// WithLogger replaces the orchestrator's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator validates the recipe structure, builds its dependency
// graph, and instantiates one module per node from the registry. All
// structural errors (graph problems, undeclared references, unknown module
// types) surface here, before anything runs.
func NewOrchestrator(rec *recipe.Recipe, argTable map[string]interface{}, opts ...Option) (*Orchestrator, error) {
	graph, err := BuildGraph(rec)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		recipe:   rec,
		graph:    graph,
		argTable: argTable,
		runID:    uuid.NewString(),
		logger:   log.With().Str("component", "Orchestrator").Str("recipe", rec.Name).Logger(),
		states:   make(map[string]*nodeState, graph.Len()),
	}
	for _, opt := range opts {
		opt(o)
	}

	for _, node := range graph.Nodes() {
		mod, err := GetModuleInstance(node.ModuleType)
		if err != nil {
			return nil, WrapGraphError(fmt.Errorf("node %q: %w", node.ID, err))
		}
		o.states[node.ID] = &nodeState{node: node, module: mod, status: StatusPending}
	}

	o.logger.Debug().Int("nodes", graph.Len()).Msg("Orchestrator initialized")
	return o, nil
}

// RunID returns the unique identifier of this run.
func (o *Orchestrator) RunID() string {
	return o.runID
}

// Run executes the recipe and returns the final report. Preflights run
// first (concurrently, with no ordering among them); any preflight failure
// aborts the run before a single module starts. Modules then execute as
// they become ready; a module failure skips its transitive consumers while
// unaffected branches keep running. Run never returns an error for node
// failures, the report carries them.
func (o *Orchestrator) Run(ctx context.Context) *RunReport {
	started := time.Now()
	o.logger.Info().Str("run_id", o.runID).Msg("Starting recipe run")

	if o.runPreflights(ctx) {
		o.runModules(ctx)
	} else {
		o.abortModules()
	}

	report := o.buildReport(started)
	o.logger.Info().
		Str("run_id", o.runID).
		Str("overall", report.Overall.String()).
		Dur("elapsed", report.EndTime.Sub(report.StartTime)).
		Msg("Recipe run complete")
	return report
}

// runPreflights executes every preflight exactly once and reports whether
// all of them succeeded.
func (o *Orchestrator) runPreflights(ctx context.Context) bool {
	preflights := o.graph.Preflights()
	if len(preflights) == 0 {
		return true
	}

	var wg sync.WaitGroup
	for _, node := range preflights {
		o.markRunning(node.ID)
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			o.executeNode(ctx, id)
		}(node.ID)
	}
	wg.Wait()

	ok := true
	for _, node := range preflights {
		if o.statusOf(node.ID) == StatusFailed {
			ok = false
		}
	}
	return ok
}

// abortModules marks every module node Skipped after a preflight failure.
func (o *Orchestrator) abortModules() {
	failed := o.failedPreflights()
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, node := range o.graph.Modules() {
		st := o.states[node.ID]
		st.status = StatusSkipped
		st.cause = fmt.Sprintf("run aborted by failed preflight %s", failed)
	}
}

func (o *Orchestrator) failedPreflights() string {
	var names string
	for _, node := range o.graph.Preflights() {
		if o.statusOf(node.ID) == StatusFailed {
			if names != "" {
				names += ", "
			}
			names += node.ID
		}
	}
	return names
}

// runModules is the scheduling loop. A single dispatcher selects ready
// nodes and hands each to its own goroutine; completions come back over a
// channel so a slow branch never delays a ready sibling.
func (o *Orchestrator) runModules(ctx context.Context) {
	done := make(chan string)
	running := 0

	for {
		for _, id := range o.readyModules() {
			o.markRunning(id)
			running++
			go func(id string) {
				o.executeNode(ctx, id)
				done <- id
			}(id)
		}
		if running == 0 {
			break
		}
		id := <-done
		running--
		if o.statusOf(id) == StatusFailed {
			o.skipDependents(id, id)
		}
	}
}

// readyModules returns the Pending module nodes whose wants have all
// terminally Succeeded, in declaration order.
func (o *Orchestrator) readyModules() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	var ready []string
	for _, node := range o.graph.Modules() {
		if o.states[node.ID].status != StatusPending {
			continue
		}
		ok := true
		for _, want := range node.Wants {
			if o.states[want].status != StatusSucceeded {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, node.ID)
		}
	}
	return ready
}

// skipDependents transitively marks every Pending consumer of id as
// Skipped, recording the failed root ancestor as the cause.
func (o *Orchestrator) skipDependents(root, id string) {
	for _, dep := range o.graph.Dependents(id) {
		o.mu.Lock()
		st := o.states[dep]
		pending := st.status == StatusPending
		if pending {
			st.status = StatusSkipped
			st.cause = fmt.Sprintf("skipped due to failed ancestor %s", root)
			if id != root {
				st.cause += fmt.Sprintf(" (via %s)", id)
			}
		}
		o.mu.Unlock()
		if pending {
			o.logger.Warn().Str("node", dep).Str("ancestor", root).Msg("Skipping node due to upstream failure")
			o.skipDependents(root, dep)
		}
	}
}

// executeNode resolves arguments, fills sentinel slots from upstream
// outputs, and runs the node's module. The caller has already marked the
// node Running.
func (o *Orchestrator) executeNode(ctx context.Context, id string) {
	if o.sem != nil {
		o.sem <- struct{}{}
		defer func() { <-o.sem }()
	}

	st := o.state(id)
	node := st.node
	o.logger.Info().Str("node", id).Str("module", node.ModuleType).Msg("Executing node")

	resolved, err := ResolveArgs(node.Args, o.argTable)
	if err != nil {
		o.fail(id, WithErrorCode(fmt.Errorf("%w: module %q: %w", ErrUnresolvedRef, id, err), errorCodeUnresolvedRef))
		return
	}

	inputs := o.collectInputs(node)
	o.fillSentinels(node, resolved, inputs)

	if err := st.module.SetUp(ctx, resolved); err != nil {
		o.fail(id, o.wrapNodeError(node, fmt.Errorf("setup: %w", err)))
		return
	}

	output, err := st.module.Process(ctx, resolved, inputs)
	if err != nil {
		o.fail(id, o.wrapNodeError(node, err))
		return
	}
	o.succeed(id, output)
}

func (o *Orchestrator) wrapNodeError(node *Node, err error) error {
	if node.Preflight {
		return NewPreflightError(node.ID, err)
	}
	return NewModuleError(node.ID, err)
}

// collectInputs snapshots the outputs of the node's dependencies, keyed by
// producing instance ID. Dependencies are terminally Succeeded before a
// node becomes ready, so the values are stable.
func (o *Orchestrator) collectInputs(node *Node) map[string]interface{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	inputs := make(map[string]interface{}, len(node.Wants))
	for _, want := range node.Wants {
		inputs[want] = o.states[want].output
	}
	return inputs
}

// fillSentinels replaces empty-string argument values with the output of
// the slot's producer: the explicit inputs mapping when declared, else the
// node's single dependency. Graph validation guarantees there is no
// ambiguous case left by the time a node executes.
func (o *Orchestrator) fillSentinels(node *Node, resolved map[string]interface{}, inputs map[string]interface{}) {
	for slot, value := range resolved {
		s, ok := value.(string)
		if !ok || s != "" {
			continue
		}
		if producer, mapped := node.Inputs[slot]; mapped {
			resolved[slot] = inputs[producer]
		} else if len(node.Wants) == 1 {
			resolved[slot] = inputs[node.Wants[0]]
		}
	}
}

func (o *Orchestrator) state(id string) *nodeState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.states[id]
}

func (o *Orchestrator) statusOf(id string) Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.states[id].status
}

func (o *Orchestrator) markRunning(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	st := o.states[id]
	st.status = StatusRunning
	st.started = time.Now()
}

func (o *Orchestrator) succeed(id string, output interface{}) {
	o.mu.Lock()
	st := o.states[id]
	st.status = StatusSucceeded
	st.output = output
	st.ended = time.Now()
	elapsed := st.ended.Sub(st.started)
	o.mu.Unlock()
	o.logger.Info().Str("node", id).Dur("elapsed", elapsed).Msg("Node succeeded")
}

func (o *Orchestrator) fail(id string, err error) {
	o.mu.Lock()
	st := o.states[id]
	st.status = StatusFailed
	st.err = err
	st.ended = time.Now()
	o.mu.Unlock()
	o.logger.Error().Str("node", id).Err(err).Msg("Node failed")
}

// buildReport assembles the final run report in declaration order.
func (o *Orchestrator) buildReport(started time.Time) *RunReport {
	o.mu.Lock()
	defer o.mu.Unlock()

	report := &RunReport{
		RunID:     o.runID,
		Recipe:    o.recipe.Name,
		StartTime: started,
		EndTime:   time.Now(),
		Nodes:     make([]NodeResult, 0, o.graph.Len()),
	}

	allSucceeded := true
	aborted := false
	for _, node := range o.graph.Nodes() {
		st := o.states[node.ID]
		if st.status != StatusSucceeded {
			allSucceeded = false
		}
		if node.Preflight && st.status == StatusFailed {
			aborted = true
		}
		report.Nodes = append(report.Nodes, NodeResult{
			ID:         node.ID,
			ModuleType: node.ModuleType,
			Preflight:  node.Preflight,
			Status:     st.status,
			Err:        st.err,
			Cause:      st.cause,
			StartTime:  st.started,
			EndTime:    st.ended,
			Output:     st.output,
		})
	}

	switch {
	case aborted:
		report.Overall = OverallAborted
	case allSucceeded:
		report.Overall = OverallSucceeded
	default:
		report.Overall = OverallPartialFailure
	}
	return report
}
