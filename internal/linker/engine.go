// Package linker drives the pipeline: it reads each issue's description,
// resolves the listed assets in the catalog and attaches the missing remote
// links.
package linker

import (
	"context"
	"fmt"
	"iter"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/missionrelease/assetlink/internal/assets"
	"github.com/missionrelease/assetlink/internal/debug"
	"github.com/missionrelease/assetlink/internal/description"
	"github.com/missionrelease/assetlink/internal/jira"
	"github.com/missionrelease/assetlink/internal/reconcile"
	"github.com/missionrelease/assetlink/internal/telemetry"
	"github.com/missionrelease/assetlink/internal/types"
)

// IssueService is the part of the Jira API the engine uses.
type IssueService interface {
	GetDescription(ctx context.Context, key string) (description.Description, error)
	ListRemoteLinks(ctx context.Context, key string) ([]types.RemoteLink, error)
	CreateRemoteLink(ctx context.Context, key string, link types.RemoteLink) error
	UpdateDescription(ctx context.Context, key string, doc *description.Node) error
}

// Resolver looks up a catalog object. A nil object with a nil error means
// nothing matched.
type Resolver interface {
	Resolve(ctx context.Context, category, name string) (*assets.Object, error)
}

// Engine links catalog assets to issues.
type Engine struct {
	Issues  IssueService
	Catalog Resolver
	Site    string

	// DryRun reports planned links and description updates without writing.
	DryRun bool
	// ContinueOnError records a failing issue and moves on instead of
	// stopping the run.
	ContinueOnError bool
	// Pace throttles the start of each issue. Nil means no delay.
	Pace *rate.Limiter

	// Callbacks for UI feedback (optional).
	OnMessage func(msg string)
	OnWarning func(msg string)

	tracer  trace.Tracer
	linked  metric.Int64Counter
	scanned metric.Int64Counter
}

// NewEngine creates an engine that builds asset URLs against site.
func NewEngine(issues IssueService, catalog Resolver, site string) *Engine {
	e := &Engine{
		Issues:  issues,
		Catalog: catalog,
		Site:    site,
		tracer:  telemetry.Tracer("github.com/missionrelease/assetlink/linker"),
	}
	m := telemetry.Meter("github.com/missionrelease/assetlink/linker")
	e.linked, _ = m.Int64Counter("assetlink.links.created",
		metric.WithDescription("Remote links created on issues"),
		metric.WithUnit("{link}"),
	)
	e.scanned, _ = m.Int64Counter("assetlink.issues.scanned",
		metric.WithDescription("Issues processed by the linker"),
		metric.WithUnit("{issue}"),
	)
	return e
}

// PaceLimiter returns a limiter admitting one issue per interval, or nil for
// a non-positive interval.
func PaceLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Run processes every issue yielded by issues. A scan error always stops the
// run. An issue error stops it unless ContinueOnError is set.
func (e *Engine) Run(ctx context.Context, issues iter.Seq2[jira.Issue, error]) (*RunResult, error) {
	result := &RunResult{Success: true, DryRun: e.DryRun}

	for issue, err := range issues {
		if err != nil {
			return e.fail(result, fmt.Errorf("scan issues: %w", err))
		}
		result.Stats.Scanned++

		if e.Pace != nil {
			if err := e.Pace.Wait(ctx); err != nil {
				return e.fail(result, err)
			}
		}

		ir, err := e.processIssue(ctx, issue.Key, &result.Stats)
		result.Issues = append(result.Issues, ir)
		if err != nil {
			result.Stats.Errors++
			if !e.ContinueOnError {
				return e.fail(result, err)
			}
			e.warn("%s: %v", issue.Key, err)
		}
	}

	if result.Stats.Errors > 0 {
		result.Success = false
		result.Error = fmt.Sprintf("%d issue(s) failed", result.Stats.Errors)
	}
	return result, nil
}

// ProcessIssue runs the pipeline for a single issue key.
func (e *Engine) ProcessIssue(ctx context.Context, key string) (*RunResult, error) {
	result := &RunResult{Success: true, DryRun: e.DryRun}
	result.Stats.Scanned = 1

	ir, err := e.processIssue(ctx, key, &result.Stats)
	result.Issues = append(result.Issues, ir)
	if err != nil {
		result.Stats.Errors++
		return e.fail(result, err)
	}
	return result, nil
}

func (e *Engine) processIssue(ctx context.Context, key string, stats *Stats) (ir IssueResult, err error) {
	ctx, span := e.tracer.Start(ctx, "linker.issue", trace.WithAttributes(attribute.String("issue.key", key)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			ir.Error = err.Error()
		}
		span.End()
	}()
	e.scanned.Add(ctx, 1)
	ir.Key = key
	ir.URL = jira.BrowseURL(e.Site, key)

	desc, err := e.Issues.GetDescription(ctx, key)
	if err != nil {
		return ir, err
	}
	sels := description.Parse(desc)
	if len(sels) == 0 {
		stats.Empty++
		if desc.IsEmpty() {
			e.msg("%s: skip: empty description", key)
		} else {
			e.msg("%s: skip: no asset tree in %s description", key, desc.Kind)
		}
		return ir, nil
	}
	stats.Parsed++
	ir.Selections = sels
	debug.Logf("linker: %s lists %d selection(s)\n", key, len(sels))

	_, err = e.linkEach(ctx, key, sels, stats, &ir)
	return ir, err
}

// linkEach resolves and links sels one pair at a time, so a failure leaves
// the pairs before it linked. It returns the selections found in the catalog.
func (e *Engine) linkEach(ctx context.Context, key string, sels []types.Selection, stats *Stats, ir *IssueResult) ([]types.Selection, error) {
	existing, err := e.Issues.ListRemoteLinks(ctx, key)
	if err != nil {
		return nil, err
	}
	set := reconcile.NewLinkSet(existing)

	var resolved []types.Selection
	for _, sel := range sels {
		obj, err := e.Catalog.Resolve(ctx, sel.Category, sel.Name)
		if err != nil {
			return resolved, fmt.Errorf("%s: %w", key, err)
		}
		if obj == nil {
			stats.Missing++
			ir.Missing = append(ir.Missing, sel)
			e.msg("%s: skip: no asset found for %s", key, sel)
			continue
		}
		resolved = append(resolved, sel)

		link := reconcile.Derive(sel, obj.ID, e.Site)
		planned := reconcile.Plan(set, []types.RemoteLink{link})
		if len(planned) == 0 {
			stats.Duplicates++
			ir.Duplicates++
			e.msg("%s: skip: already linked %s", key, link.Title)
			continue
		}
		if err := e.create(ctx, key, planned, stats, ir); err != nil {
			return resolved, err
		}
	}
	return resolved, nil
}

// create attaches the planned links. Links created before a failure stay
// reported in ir.
func (e *Engine) create(ctx context.Context, key string, planned []types.RemoteLink, stats *Stats, ir *IssueResult) error {
	for _, link := range planned {
		if e.DryRun {
			e.msg("%s: would link %s -> %s", key, link.Title, link.URL)
		} else {
			if err := e.Issues.CreateRemoteLink(ctx, key, link); err != nil {
				return err
			}
			e.linked.Add(ctx, 1)
			e.msg("%s: linked %s -> %s", key, link.Title, link.URL)
		}
		stats.Linked++
		ir.Created = append(ir.Created, link)
	}
	return nil
}

func (e *Engine) fail(result *RunResult, err error) (*RunResult, error) {
	result.Success = false
	result.Error = err.Error()
	return result, err
}

func (e *Engine) msg(format string, args ...interface{}) {
	if e.OnMessage != nil {
		e.OnMessage(fmt.Sprintf(format, args...))
	}
}

func (e *Engine) warn(format string, args ...interface{}) {
	if e.OnWarning != nil {
		e.OnWarning(fmt.Sprintf(format, args...))
	}
}
