package main

import (
	"context"
	"os"

	"github.com/newrelic/infra-integrations-sdk/v3/integration"
	"github.com/newrelic/infra-integrations-sdk/v3/log"

	"github.com/newrelic/nri-dmem/src/config"
	"github.com/newrelic/nri-dmem/src/driver"
	"github.com/newrelic/nri-dmem/src/render"
)

var (
	integrationVersion = "0.0.0"
	gitCommit          = ""
	buildDate          = ""
)

func main() {
	args := config.ArgumentList{}
	i, err := integration.New(driver.IntegrationName, integrationVersion, integration.Args(&args))
	driver.ExitOnErr(err)

	if args.ShowVersion {
		driver.PrintVersion(integrationVersion, gitCommit, buildDate)
		os.Exit(0)
	}
	if args.HelpCols {
		driver.ExitOnErr(render.WriteColumnHelp(os.Stdout))
		os.Exit(0)
	}

	log.SetupLogging(args.Verbose)
	driver.ExitOnErr(args.Validate())

	dockerClient, err := driver.NewDockerClient(args.DockerClientVersion)
	driver.ExitOnErr(err)

	err = driver.Run(context.Background(), i, args, dockerClient, os.Stdout)
	if closeErr := dockerClient.Close(); closeErr != nil {
		log.Debug("closing docker client: %v", closeErr)
	}
	driver.ExitOnErr(err)
}
