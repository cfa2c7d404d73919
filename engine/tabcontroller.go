package engine

import (
	"context"

	"github.com/joeychilson/redirector/logger"
)

// LogTabController records navigations through the structured logger.
// It is the default controller when no browser integration is attached:
// callers of the navigation API read the decision from the response and
// perform the navigation themselves.
type LogTabController struct {
	log logger.Logger
}

// NewLogTabController creates a controller that logs navigations.
func NewLogTabController(log logger.Logger) *LogTabController {
	if log == nil {
		log = logger.Noop()
	}
	return &LogTabController{log: log}
}

// Navigate logs the requested navigation.
func (c *LogTabController) Navigate(ctx context.Context, tabID int, url string) error {
	c.log.Debug("navigate tab", "tab_id", tabID, "url", url)
	return nil
}

// NoopTabController returns a controller that does nothing.
func NoopTabController() TabController {
	return noopTabController{}
}

type noopTabController struct{}

func (noopTabController) Navigate(ctx context.Context, tabID int, url string) error {
	return nil
}
