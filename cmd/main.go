package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/quka-ai/moodjournal/cmd/service"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:          "moodjournal",
		Short:        "mood journal backend",
		Version:      version,
		SilenceUsage: true,
	}

	root.AddCommand(service.NewCommand(), service.NewInstallCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
