// Package main provides the CLI entry point for jvlbictl.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/jvlbi"
	"github.com/five82/jvlbi/internal/iface"
	"github.com/five82/jvlbi/internal/logging"
	"github.com/five82/jvlbi/internal/mount"
	"github.com/five82/jvlbi/internal/reporter"
)

const (
	appName    = "jvlbictl"
	appVersion = "0.1.0"
)

// cliFlags holds the root persistent flags shared by every subcommand.
type cliFlags struct {
	logDir      string
	verbose     bool
	noLog       bool
	mountpoints []string
	protocol    string
	host        string
	port        int
	mtu         uint32
	blocksize   uint64
	queueDepth  int
	compress    bool
}

func main() {
	var flags cliFlags

	root := &cobra.Command{
		Use:     appName,
		Short:   "Operator harness for the jvlbi data-capture and transport engine",
		Version: appVersion,
	}
	root.PersistentFlags().StringVarP(&flags.logDir, "log-dir", "l", "", "Log directory (defaults to ~/.local/state/jvlbictl/logs)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().BoolVar(&flags.noLog, "no-log", false, "Disable log file creation")
	root.PersistentFlags().StringSliceVar(&flags.mountpoints, "mountpoints", []string{"*"}, "Mountpoint glob or re: patterns")
	root.PersistentFlags().StringVar(&flags.protocol, "protocol", "tcp", "Network protocol (tcp, udp, pudp, udps, udpsnor, rtcp, unix)")
	root.PersistentFlags().StringVar(&flags.host, "host", "127.0.0.1", "Destination/source host")
	root.PersistentFlags().IntVar(&flags.port, "port", 2630, "Destination/source port")
	root.PersistentFlags().Uint32Var(&flags.mtu, "mtu", 0, "Network MTU in bytes (0 uses the package default)")
	root.PersistentFlags().Uint64Var(&flags.blocksize, "blocksize", 0, "Block size in bytes (0 uses the package default)")
	root.PersistentFlags().IntVar(&flags.queueDepth, "queue-depth", 0, "Bounded queue capacity between chain steps (0 uses the package default)")
	root.PersistentFlags().BoolVar(&flags.compress, "compress", false, "Enable the bit-mask compression planner by default")

	root.AddCommand(
		newHardwareCommand(&flags),
		newModesCommand(),
		newTransferCommand(&flags),
		newQueryCommand(&flags),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging resolves the log directory and opens the run's log file,
// following the teacher's ~/.local/state/<app>/logs convention.
func setupLogging(flags *cliFlags) (*logging.Logger, error) {
	logDir := flags.logDir
	if logDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		logDir = homeDir + "/.local/state/jvlbictl/logs"
	}
	return logging.Setup(logDir, flags.verbose, flags.noLog)
}

// buildEngine constructs an Engine over mock capture-board, disk-array, and
// transport facades. The real drivers are out of this module's scope
// (§1), so jvlbictl drives the mocks it also ships as transfer-mode test
// doubles — good enough to exercise the command surface end to end.
func buildEngine(flags *cliFlags) (*jvlbi.Engine, error) {
	proto := jvlbi.Protocol(flags.protocol)
	net := jvlbi.NetParams{
		Protocol:           proto,
		MTU:                flags.mtu,
		Blocksize:          flags.blocksize,
		InterPacketDelayNs: -1,
		ACKPeriod:          10,
		Endpoints:          []jvlbi.HostPort{{Host: flags.host, Port: flags.port}},
	}
	if net.MTU == 0 {
		net.MTU = 1500
	}
	if net.Blocksize == 0 {
		net.Blocksize = 128 * 1024
	}

	opts := []jvlbi.Option{
		jvlbi.WithMountpointPatterns(flags.mountpoints...),
		jvlbi.WithNetParams(net),
		jvlbi.WithCompression(flags.compress),
	}
	if flags.queueDepth > 0 {
		opts = append(opts, jvlbi.WithQueueDepth(flags.queueDepth))
	}
	if flags.verbose {
		opts = append(opts, jvlbi.WithVerbose())
	}

	board := iface.NewMockCaptureBoard(iface.HardwareMark5C)
	disk := iface.NewMockDiskArray()
	transport := iface.NewMockTransport()

	return jvlbi.New(board, disk, transport, opts...)
}

func newHardwareCommand(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "hardware",
		Short: "Report the capture board hardware flags and mountpoint count",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := buildEngine(flags); err != nil {
				return err
			}
			mountpoints, err := mount.ExpandMountpoints(flags.mountpoints)
			if err != nil {
				return err
			}
			rep := reporter.NewTerminalReporter()
			hostname, _ := os.Hostname()
			rep.Hardware(reporter.HardwareSummary{
				Hostname:     hostname,
				CaptureBoard: iface.HardwareMark5C.String(),
				MountpointsN: len(mountpoints),
				QueueDepth:   flags.queueDepth,
			})
			return nil
		},
	}
}

func newModesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List the registered transfer-mode command names",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{
				"disk2net", "file2net", "fill2net", "disk2out", "diskfill2file",
				"in2disk", "in2net", "net2out", "disk2net_vbs", "scan_set",
			} {
				fmt.Println(name)
			}
			return nil
		},
	}
}

// newQueryCommand runs a mode's query command against a freshly built
// engine, printing its current (necessarily idle, standalone-process)
// state. Exercises the same dispatch path "transfer" uses mid-cycle.
func newQueryCommand(flags *cliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query <mode>",
		Short: "Query a transfer mode's current state and progress counters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := buildEngine(flags)
			if err != nil {
				return err
			}
			fmt.Println(engine.Query(args[0]).String())
			return nil
		},
	}
}

// newTransferCommand runs one full connect -> on -> [hold] -> off ->
// disconnect cycle against the named transfer mode, mirroring the
// teacher's single-job "encode" subcommand shape.
func newTransferCommand(flags *cliFlags) *cobra.Command {
	var connectArgs []string
	var onArgs []string
	var hold time.Duration

	cmd := &cobra.Command{
		Use:   "transfer <mode>",
		Short: "Run one connect/on/off/disconnect cycle against a transfer mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := args[0]

			logger, err := setupLogging(flags)
			if err != nil {
				return fmt.Errorf("failed to setup logging: %w", err)
			}
			if logger != nil {
				defer func() { _ = logger.Close() }()
				logger.Info("starting transfer mode %s", mode)
			}

			engine, err := buildEngine(flags)
			if err != nil {
				return fmt.Errorf("failed to build engine: %w", err)
			}

			rep := reporter.NewTerminalReporter()
			rep.StateChanged(reporter.StateChange{Mode: mode, FromState: "no_transfer", ToState: "connecting"})

			connectReply := engine.Connect(mode, connectArgs)
			fmt.Println(connectReply.String())
			if connectReply.Code != 0 {
				return fmt.Errorf("connect failed: %s", connectReply.Text)
			}

			onReply := engine.On(mode, onArgs)
			fmt.Println(onReply.String())
			if onReply.Code != 0 {
				_ = engine.Disconnect(mode)
				return fmt.Errorf("on failed: %s", onReply.Text)
			}

			if logger != nil {
				logger.Info("transfer running, holding for %s", hold)
			}
			time.Sleep(hold)

			fmt.Println(engine.Query(mode).String())

			offReply := engine.Off(mode)
			fmt.Println(offReply.String())

			disconnectReply := engine.Disconnect(mode)
			fmt.Println(disconnectReply.String())

			if err := engine.LastError(); err != nil && logger != nil {
				logger.Warn("last recorded error: %v", err)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&connectArgs, "connect-arg", nil, "Argument to pass to the mode's connect command (repeatable)")
	cmd.Flags().StringSliceVar(&onArgs, "on-arg", []string{"count", strconv.Itoa(64 * 1024 * 1024)}, "Argument to pass to the mode's on command (repeatable)")
	cmd.Flags().DurationVar(&hold, "hold", 2*time.Second, "How long to stay in the running state before turning off")

	return cmd
}
