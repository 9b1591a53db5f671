package main

import (
	"os"

	"github.com/mcgeq/mcg/internal/cli"
	"github.com/mcgeq/mcg/internal/ui"
	errs "github.com/mcgeq/mcg/pkg/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		ui.ErrorMsg("%v", err)
		os.Exit(errs.ExitCode(err))
	}
}
