// Package engine processes navigation events: match the URL against the
// configured rules, build the redirect target, and drive the tab
// controller, history log and notifier.
package engine

import (
	"context"
	"fmt"

	"github.com/joeychilson/redirector/history"
	"github.com/joeychilson/redirector/logger"
	"github.com/joeychilson/redirector/notify"
	"github.com/joeychilson/redirector/redirect"
	"github.com/joeychilson/redirector/rule"
	"github.com/joeychilson/redirector/settings"
	"github.com/joeychilson/redirector/tabstate"
)

// TabController performs the actual navigation of a browser tab.
type TabController interface {
	Navigate(ctx context.Context, tabID int, url string) error
}

// Decision is the outcome of processing one navigation event.
type Decision struct {
	// Redirected reports whether a redirect was issued.
	Redirected bool `json:"redirected"`
	// TargetURL is the destination the tab was navigated to.
	TargetURL string `json:"targetUrl,omitempty"`
	// RuleID and RuleName identify the rule that matched.
	RuleID   string `json:"ruleId,omitempty"`
	RuleName string `json:"ruleName,omitempty"`
	// Swallowed reports that the event was our own redirect's navigation
	// and was dropped by the loop guard.
	Swallowed bool `json:"swallowed,omitempty"`
}

// Engine is the navigation pipeline.
type Engine struct {
	settings *settings.Store
	history  *history.Store
	tabs     *tabstate.Tracker
	matcher  *rule.Matcher
	builder  *redirect.Builder
	ctrl     TabController
	notifier notify.Notifier
	log      logger.Logger
}

// New creates an Engine. A nil controller, notifier or logger falls back
// to a no-op implementation.
func New(st *settings.Store, hist *history.Store, ctrl TabController, notifier notify.Notifier, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Noop()
	}
	if ctrl == nil {
		ctrl = NoopTabController()
	}
	if notifier == nil {
		notifier = notify.Noop()
	}
	return &Engine{
		settings: st,
		history:  hist,
		tabs:     tabstate.NewTracker(),
		matcher:  rule.NewMatcher(log),
		builder:  redirect.NewBuilder(log),
		ctrl:     ctrl,
		notifier: notifier,
		log:      log,
	}
}

// HandleNavigation processes one top-level navigation attempt. Only
// frame-0 events are considered. The returned error is non-nil only for
// settings-read or navigation failures; in both cases the navigation is
// left un-redirected.
func (e *Engine) HandleNavigation(ctx context.Context, tabID, frameID int, url string) (Decision, error) {
	if frameID != 0 {
		return Decision{}, nil
	}

	// The first event after we navigated this tab ourselves is the
	// redirect's own navigation; swallow it so it cannot re-match.
	if e.tabs.ConsumePending(tabID) {
		e.log.Debug("swallowing self navigation", "tab_id", tabID, "url", url)
		return Decision{Swallowed: true}, nil
	}

	cfg, err := e.settings.Get(ctx)
	if err != nil {
		e.log.Error("failed to read settings, navigation passes through",
			"tab_id", tabID, "url", url, "error", err)
		return Decision{}, err
	}
	if !cfg.Enabled {
		return Decision{}, nil
	}

	matched, ok := e.matcher.Find(url, cfg.Rules)
	if !ok {
		return Decision{}, nil
	}

	target := e.builder.Build(url, matched)
	if target == url {
		// The builder failed soft or the rule is a no-op; string
		// equality is the "no redirect" contract.
		return Decision{}, nil
	}

	if err := e.ctrl.Navigate(ctx, tabID, target); err != nil {
		e.log.Error("failed to navigate tab",
			"tab_id", tabID, "url", target, "error", err)
		return Decision{}, fmt.Errorf("failed to navigate tab %d: %w", tabID, err)
	}
	e.tabs.MarkPending(tabID)

	e.log.Info("redirected",
		"tab_id", tabID,
		"rule_id", matched.ID,
		"rule_name", matched.Name,
		"from", url,
		"to", target)

	if cfg.LogRedirects && e.history != nil {
		entry := history.Entry{
			OriginalURL:   url,
			RedirectedURL: target,
			RuleID:        matched.ID,
			RuleName:      matched.Name,
			TabID:         tabID,
		}
		if err := e.history.Add(ctx, entry); err != nil {
			e.log.Error("failed to record redirect", "error", err)
		}
	}

	if cfg.ShowNotifications {
		e.notifier.Notify(ctx, "Redirected",
			fmt.Sprintf("%s: %s -> %s", matched.Name,
				notify.TruncateURL(url), notify.TruncateURL(target)))
	}

	return Decision{
		Redirected: true,
		TargetURL:  target,
		RuleID:     matched.ID,
		RuleName:   matched.Name,
	}, nil
}

// TabClosed clears the loop-guard state for a closed tab.
func (e *Engine) TabClosed(tabID int) {
	e.tabs.Drop(tabID)
}

// TestResult is the outcome of a dry-run rule test.
type TestResult struct {
	Matches     bool   `json:"matches"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// TestRule checks whether r would match url and what the destination
// would be, without side effects. The rule's enabled flag is ignored so
// rules can be tested while edits are in progress.
func (e *Engine) TestRule(url string, r rule.Rule) TestResult {
	probe := r
	probe.Enabled = true
	matched, ok := e.matcher.Find(url, []rule.Rule{probe})
	if !ok {
		return TestResult{}
	}
	return TestResult{
		Matches:     true,
		RedirectURL: e.builder.Build(url, matched),
	}
}
