package main

import (
	"path/filepath"

	"github.com/pressly/goose"

	"github.com/quadbase/ocms/core"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	command := "up"
	arguments := make([]string, 0)
	if len(args) > 0 {
		command = args[0]
		arguments = append(arguments, args[1:]...)
	}
	if err := goose.SetDialect(core.Conf.Database.Engine); err != nil {
		return err
	}
	dir := filepath.Join(core.Conf.WorkDir, "storage", "database", "migrations")
	return gooseRunFunc(command, cli.db.DB, dir, arguments...)
}
