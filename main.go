package main

import (
	"fmt"
	"os"

	"github.com/auditflow-pro/auditflow-pro/cmd/cli"
)

const (
	exitErrorTemplateConstant = "auditflow: %v\n"
	failureExitCodeConstant   = 1
)

func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(failureExitCodeConstant)
	}
}
