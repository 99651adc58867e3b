package commands

import (
	devenv "wikispider/dev/env"
	"wikispider/internal/assets"
	"wikispider/internal/components/telemetry"
	"wikispider/internal/config"
	"wikispider/internal/request"
	"wikispider/internal/scheduler"
	"wikispider/internal/sources/ambr"
	"wikispider/internal/sources/gamedata"
	"wikispider/internal/sources/hakush"
	"wikispider/internal/sources/honey"
	"wikispider/internal/spider"
	"wikispider/lib/restyutil"
	"wikispider/lib/serviceutil"
)

// newRegistry registers every adapter the crawler knows about. Adding a
// source means adding it here.
func newRegistry(cfg config.Config, store assets.Store, tel telemetry.API) *scheduler.Registry {
	var output restyutil.InstrumentOutput
	if cfg.Debug {
		dir, err := devenv.ResolvePath("<dev_state>/resty")
		if err != nil {
			serviceutil.Fatal("failed to resolve resty output directory", err)
		}
		fsOutput, err := restyutil.NewFilesystemOutput(dir)
		if err != nil {
			serviceutil.Fatal("failed to create resty output directory", err)
		}
		output = fsOutput
	}

	deps := spider.Deps{
		Client: request.NewClient(request.Options{Output: output}, tel),
		Store:  store,
		Tel:    tel,
	}
	// honeyhunterworld sits behind cloudflare
	htmlDeps := deps
	htmlDeps.Client = request.NewClient(request.Options{Output: output, CloudflareBypass: true}, tel)

	registry := scheduler.NewRegistry()
	registry.Register(ambr.All(deps, ambr.DefaultEndpoints)...)
	registry.Register(hakush.All(deps, hakush.DefaultEndpoints)...)
	registry.Register(honey.All(htmlDeps, honey.DefaultEndpoints)...)
	registry.Register(gamedata.NewAdapter(deps, gamedata.Options{Refresh: cfg.GenshinExcelData}))
	return registry
}
