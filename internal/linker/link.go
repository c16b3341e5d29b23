package linker

import (
	"context"
	"fmt"

	"github.com/missionrelease/assetlink/internal/description"
	"github.com/missionrelease/assetlink/internal/jira"
	"github.com/missionrelease/assetlink/internal/types"
)

// LinkOptions controls LinkSelections.
type LinkOptions struct {
	// Heading titles the appended asset tree. Defaults to description.DefaultHeading.
	Heading string
	// SkipDescription leaves the issue description untouched.
	SkipDescription bool
}

// LinkSelections links an explicit list of selections to an issue, then
// appends the linked pairs to the description as an asset tree. Pairs the
// description already lists are not appended again.
func (e *Engine) LinkSelections(ctx context.Context, key string, sels []types.Selection, opts LinkOptions) (*RunResult, error) {
	result := &RunResult{Success: true, DryRun: e.DryRun}
	result.Stats.Scanned = 1
	ir := IssueResult{Key: key, URL: jira.BrowseURL(e.Site, key)}

	var valid []types.Selection
	for _, sel := range sels {
		sel = types.NewSelection(sel.Category, sel.Name)
		if !sel.Valid() {
			e.warn("%s: ignoring incomplete selection %q", key, sel)
			continue
		}
		valid = append(valid, sel)
	}
	ir.Selections = valid
	if len(valid) == 0 {
		result.Stats.Empty++
		result.Issues = append(result.Issues, ir)
		e.msg("%s: no selections to link", key)
		return result, nil
	}
	result.Stats.Parsed++

	err := e.linkSelections(ctx, key, valid, opts, &result.Stats, &ir)
	if err != nil {
		ir.Error = err.Error()
	}
	result.Issues = append(result.Issues, ir)
	if err != nil {
		result.Stats.Errors++
		return e.fail(result, err)
	}
	return result, nil
}

func (e *Engine) linkSelections(ctx context.Context, key string, sels []types.Selection, opts LinkOptions, stats *Stats, ir *IssueResult) error {
	resolved, err := e.linkEach(ctx, key, sels, stats, ir)
	if err != nil {
		return err
	}

	if opts.SkipDescription {
		return nil
	}
	if len(resolved) == 0 {
		e.msg("%s: no assets linked; description not changed", key)
		return nil
	}
	return e.appendTree(ctx, key, resolved, opts.Heading, ir)
}

// appendTree adds the selections the description does not already list.
func (e *Engine) appendTree(ctx context.Context, key string, sels []types.Selection, heading string, ir *IssueResult) error {
	if heading == "" {
		heading = description.DefaultHeading
	}

	desc, err := e.Issues.GetDescription(ctx, key)
	if err != nil {
		return err
	}
	listed := make(map[types.Selection]bool)
	for _, s := range description.Parse(desc) {
		listed[s] = true
	}
	var missing []types.Selection
	for _, s := range sels {
		if !listed[s] {
			missing = append(missing, s)
			listed[s] = true
		}
	}
	if len(missing) == 0 {
		e.msg("%s: description already lists every linked asset", key)
		return nil
	}

	doc, err := description.AppendTree(desc, heading, missing)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if e.DryRun {
		e.msg("%s: would append %d asset(s) to the description", key, len(missing))
		return nil
	}
	if err := e.Issues.UpdateDescription(ctx, key, doc); err != nil {
		return err
	}
	ir.Described = true
	e.msg("%s: description updated with %s section", key, heading)
	return nil
}
