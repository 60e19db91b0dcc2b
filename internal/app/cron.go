package app

import (
	"context"
	"fmt"

	"github.com/anish3d/folio/internal/modules/content/notes"
	pkgcron "github.com/anish3d/folio/internal/pkg/cron"
)

// registerCronJobs keeps the content cache warm so visitors rarely wait on
// Notion. Collections without a database are skipped.
func (a *App) registerCronJobs() {
	interval := a.cfg.Cache.WarmInterval
	if interval <= 0 || a.cfg.Cache.Disabled {
		return
	}
	for _, svc := range []*notes.Service{a.Notes, a.Develop} {
		coll := svc.Collection()
		if coll.DatabaseID == "" {
			continue
		}
		a.sched.Register(pkgcron.Job{
			Name:        "warm_" + coll.Name,
			Description: fmt.Sprintf("Prefetch the %s listing and pages", coll.Name),
			Interval:    interval,
			RunOnStart:  true,
			Fn:          svc.Warm,
		})
	}
	if a.cfg.Notion.LinksDatabaseID != "" {
		a.sched.Register(pkgcron.Job{
			Name:        "warm_links",
			Description: "Prefetch the about links",
			Interval:    interval,
			Fn: func(ctx context.Context) error {
				_, err := a.Links.List(ctx)
				return err
			},
		})
	}
}
