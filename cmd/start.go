package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/yaoapp/kun/log"

	"github.com/relaywire/relay/internal/config"
	"github.com/relaywire/relay/internal/connector"
	"github.com/relaywire/relay/internal/dispatcher"
	"github.com/relaywire/relay/internal/lifecycle"
	"github.com/relaywire/relay/internal/logging"
	"github.com/relaywire/relay/internal/message"
	"github.com/relaywire/relay/internal/pipeline"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bus",
	Long:  "Load the configuration file, connect every configured connector, and start routing messages.",
	Run:   runStart,
}

func runStart(cmd *cobra.Command, args []string) {
	logging.Init(debug, logFile)
	defer logging.Close()

	banner()

	cfg, err := config.Load(configFile)
	if err != nil {
		fatal(err)
	}

	p, err := pipeline.New(cfg.Blocks, ignoreCycles)
	if err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectorIdxs := make([]int, len(cfg.Connectors))
	for i := range cfg.Connectors {
		connectorIdxs[i] = i
	}

	supervisor := lifecycle.NewSupervisor(connectorIdxs)
	go supervisor.Start(ctx, connectorIdxs)

	source := make(chan message.Message, dispatcher.IngressBuffer)

	handles := make([]*connector.Handle, len(cfg.Connectors))
	for idx, ccfg := range cfg.Connectors {
		handle, err := connector.Make(ctx, idx, source, supervisor.Events(), ccfg)
		if err != nil {
			// A connector that can't even start is the same fatal condition
			// an Exited lifecycle event reports once running: the bus can't
			// guarantee delivery on that leg, so the process exits non-zero.
			fatal(fmt.Errorf("connector %d: %w", idx, err))
		}
		handles[idx] = handle
	}

	d := dispatcher.New(source, p, handles, debug)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	if err := supervisor.WaitAllReady(ctx); err != nil {
		fatal(err)
	}

	fmt.Println(color.GreenString("relay is routing"))
	go d.Run(ctx)

	<-interrupt
	fmt.Println(color.WhiteString("shutting down"))
}

func banner() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return
	}
	fmt.Println(color.CyanString("relay"), color.WhiteString(Version))
	fmt.Println(color.WhiteString("message routing and transformation bus"))
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, color.RedString("fatal: %v", err))
	log.Error("%v", err)
	os.Exit(1)
}
