package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	devenv "wikispider/dev/env"
	"wikispider/internal/ledger"
)

const devConfig = `{
    // written by dev/main.go, run with: go run ./cmd/wikispider --config dev/.state/config.json5
    debug: true,
    games: {genshin: true, starrail: false, zzz: false, ww: false},
    genshin_excel_data: false,
    assets_root: "assets",
    ledger: {file: "ledger.db"},
}
`

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		state, err := devenv.GetStateFilePath("")
		if err != nil {
			return err
		}
		err = os.RemoveAll(state)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	ledgerPath, err := devenv.ResolvePath(devenv.StatePrefix + "/ledger.db")
	if err != nil {
		return err
	}
	db, err := ledger.Open(ledgerPath)
	if err != nil {
		return err
	}
	err = db.Close()
	if err != nil {
		return err
	}

	configPath, err := devenv.ResolvePath(devenv.StatePrefix + "/config.json5")
	if err != nil {
		return err
	}
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		err = os.WriteFile(configPath, []byte(devConfig), 0666)
		if err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	slog.Info("dev config", "path", configPath, "ledger", ledgerPath)
	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created successfully!")
}
