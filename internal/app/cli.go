package app

import (
	"context"

	"github.com/custodia-labs/medibot/internal/adapters/driving/cli"
	"github.com/custodia-labs/medibot/internal/core/ports/driving"
)

var cliPurposes = map[cli.Purpose]Purpose{
	cli.PurposeInspect:  PurposeInspect,
	cli.PurposeIngest:   PurposeIngest,
	cli.PurposeAsk:      PurposeAsk,
	cli.PurposeSettings: PurposeSettings,
}

// OpenForCLI opens a Runtime and exposes it as command services.
func OpenForCLI(ctx context.Context, req cli.Request) (*cli.Services, error) {
	rt, err := Open(ctx, Options{Home: req.ConfigDir, Purpose: cliPurposes[req.Purpose]})
	if err != nil {
		return nil, err
	}
	return rt.CLIServices(), nil
}

// CLIServices exposes the opened parts of rt. Interface fields stay nil
// for parts the purpose did not open.
func (rt *Runtime) CLIServices() *cli.Services {
	svc := &cli.Services{
		Home:            rt.Home,
		Settings:        rt.Settings,
		SettingsService: rt.SettingsService,
		Golden:          rt.Golden,
		Close:           rt.Close,
	}
	if rt.Catalog != nil {
		svc.Catalog = rt.Catalog
	}
	if rt.Ask != nil {
		svc.Ask = rt.Ask
	}
	if rt.Eval != nil {
		svc.Eval = rt.Eval
	}
	if rt.Index != nil {
		svc.Index = rt.Index
	}
	if rt.Ingest != nil {
		svc.Ingest = rt.Ingest
		svc.NewScheduler = func(schedule string) (driving.Scheduler, error) {
			sched, err := rt.NewScheduler(schedule)
			if err != nil {
				return nil, err
			}
			return sched, nil
		}
	}
	return svc
}
