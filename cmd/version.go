package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the bus's release version, overridable at build time with
// -ldflags "-X github.com/relaywire/relay/cmd.Version=...".
var Version = "0.1.0-dev"

var printGoVersion bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Long:  "Show the relay version",
	Run: func(cmd *cobra.Command, args []string) {
		if printGoVersion {
			fmt.Printf("relay %s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return
		}
		fmt.Println(Version)
	},
}

func init() {
	versionCmd.PersistentFlags().BoolVarP(&printGoVersion, "all", "", false, "Print Go runtime and platform information too")
}
