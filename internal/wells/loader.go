package wells

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"go-pi-well-dashboard/internal/connectors/piwebapi"
)

// ErrNoWellsProcessed means the load completed its walk but zero pads ended
// up with at least one mapped well.
var ErrNoWellsProcessed = errors.New("no wells processed: every discovered pad had zero mappable wells")

// Iteration caps. Truncation points, not errors: candidates beyond a cap are
// silently dropped to bound worst-case request counts and latency.
const (
	DefaultMaxPads        = 10
	DefaultMaxWellsPerPad = 20
)

// Navigator is the slice of the PI Web API client one load needs. Pads and
// wells are walked strictly sequentially, one round trip at a time.
type Navigator interface {
	ResolveEndpoint(ctx context.Context) (string, error)
	FindDatabase(ctx context.Context, assetServerName, databaseName string) (piwebapi.Database, error)
	ListChildren(ctx context.Context, parent piwebapi.ChildSource) ([]piwebapi.Element, error)
	NavigatePath(ctx context.Context, db piwebapi.Database, rawPath string) ([]piwebapi.Element, error)
	LoadAttributes(ctx context.Context, el piwebapi.Element) ([]piwebapi.RawAttribute, error)
}

// Config identifies the load target. Immutable for the duration of one load.
type Config struct {
	AssetServerName    string
	DatabaseName       string
	ParentElementPath  string
	TemplateNameFilter string

	MaxPads        int
	MaxWellsPerPad int
}

// Loader runs one full discover-map-aggregate pass against a navigator.
type Loader struct {
	nav     Navigator
	cfg     Config
	mapping Mapping
	rng     *rand.Rand
	logf    func(format string, args ...any)
}

func NewLoader(nav Navigator, cfg Config, mapping Mapping) *Loader {
	if cfg.MaxPads <= 0 {
		cfg.MaxPads = DefaultMaxPads
	}
	if cfg.MaxWellsPerPad <= 0 {
		cfg.MaxWellsPerPad = DefaultMaxWellsPerPad
	}
	return &Loader{
		nav:     nav,
		cfg:     cfg,
		mapping: DefaultMapping().Merge(mapping),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logf:    log.Printf,
	}
}

// ValidationStage is one gate check with its outcome.
type ValidationStage struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// ValidationResult reports the staged pre-load check. Warnings never fail the
// gate.
type ValidationResult struct {
	OK       bool              `json:"ok"`
	Stages   []ValidationStage `json:"stages"`
	Warnings []string          `json:"warnings,omitempty"`
}

// ValidationError is the structured gate failure: which stage broke and why.
type ValidationError struct {
	Stage string
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed at %s: %v", e.Stage, e.Cause)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// Validate runs the staged pre-load check, stopping at the first failure:
// endpoint reachable, database found, database non-empty, and a sampled
// structure probe (at least one of the first three top-level elements has
// children). An unresolvable configured parent path is recorded as a warning
// only, since the field is often left blank or goes stale intentionally.
func (l *Loader) Validate(ctx context.Context) (ValidationResult, error) {
	res := ValidationResult{}

	fail := func(stage string, cause error) (ValidationResult, error) {
		res.Stages = append(res.Stages, ValidationStage{Name: stage, OK: false, Detail: cause.Error()})
		return res, &ValidationError{Stage: stage, Cause: cause}
	}
	pass := func(stage, detail string) {
		res.Stages = append(res.Stages, ValidationStage{Name: stage, OK: true, Detail: detail})
	}

	endpoint, err := l.nav.ResolveEndpoint(ctx)
	if err != nil {
		return fail("endpoint", err)
	}
	pass("endpoint", endpoint)

	db, err := l.nav.FindDatabase(ctx, l.cfg.AssetServerName, l.cfg.DatabaseName)
	if err != nil {
		return fail("database", err)
	}
	pass("database", db.Name)

	topLevel, err := l.nav.ListChildren(ctx, db)
	if err != nil {
		return fail("elements", err)
	}
	if len(topLevel) == 0 {
		return fail("elements", fmt.Errorf("database %q has no elements", db.Name))
	}
	pass("elements", fmt.Sprintf("%d top-level elements", len(topLevel)))

	probeCount := len(topLevel)
	if probeCount > 3 {
		probeCount = 3
	}
	structured := false
	for _, el := range topLevel[:probeCount] {
		children, err := l.nav.ListChildren(ctx, el)
		if err != nil {
			l.logf("validation: probing %s children: %v", el.Name, err)
			continue
		}
		if len(children) > 0 {
			structured = true
			break
		}
	}
	if !structured {
		return fail("structure", fmt.Errorf("none of the first %d elements has children; expected a well-pad hierarchy", probeCount))
	}
	pass("structure", "well-pad hierarchy detected")

	if strings.TrimSpace(l.cfg.ParentElementPath) != "" {
		if _, err := l.nav.NavigatePath(ctx, db, l.cfg.ParentElementPath); err != nil {
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("configured parent path %q did not resolve: %v", l.cfg.ParentElementPath, err))
		}
	}

	res.OK = true
	return res, nil
}

// Load runs the full pass: validation gate first (all-or-nothing), then path
// navigation, then a strictly sequential pad/well walk with per-item
// skip-and-continue. A bad well never aborts its pad and a bad pad never
// aborts the load.
func (l *Loader) Load(ctx context.Context) ([]WellPadRecord, error) {
	if _, err := l.Validate(ctx); err != nil {
		return nil, err
	}

	db, err := l.nav.FindDatabase(ctx, l.cfg.AssetServerName, l.cfg.DatabaseName)
	if err != nil {
		return nil, err
	}

	pads, err := l.nav.NavigatePath(ctx, db, l.cfg.ParentElementPath)
	if err != nil {
		return nil, err
	}
	if len(pads) > l.cfg.MaxPads {
		pads = pads[:l.cfg.MaxPads]
	}

	out := make([]WellPadRecord, 0, len(pads))
	totalWells := 0
	for _, pad := range pads {
		candidates, err := l.nav.ListChildren(ctx, pad)
		if err != nil {
			l.logf("skipping pad %s: %v", pad.Name, err)
			continue
		}
		if len(candidates) > l.cfg.MaxWellsPerPad {
			candidates = candidates[:l.cfg.MaxWellsPerPad]
		}

		mapped := make([]WellRecord, 0, len(candidates))
		for _, wellEl := range candidates {
			if !l.matchesTemplate(wellEl) {
				continue
			}
			attrs, err := l.nav.LoadAttributes(ctx, wellEl)
			if err != nil {
				l.logf("skipping well %s on pad %s: %v", wellEl.Name, pad.Name, err)
				continue
			}
			mapped = append(mapped, MapWell(wellEl.Name, attrs, l.mapping, l.rng))
		}
		if len(mapped) == 0 {
			continue
		}

		out = append(out, AggregatePad(pad.Name, mapped))
		totalWells += len(mapped)
	}

	if totalWells == 0 {
		return nil, ErrNoWellsProcessed
	}
	return out, nil
}

func (l *Loader) matchesTemplate(el piwebapi.Element) bool {
	filter := strings.TrimSpace(l.cfg.TemplateNameFilter)
	if filter == "" {
		return true
	}
	return strings.EqualFold(el.TemplateName, filter)
}
