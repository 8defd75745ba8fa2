// diorama - terminal scene graph viewer
// Shows a scene of cubes arranged in a parent/child hierarchy (a chair by
// default) and lets you select and rotate its parts.
//
// Controls:
//
//	Space/Tab   - Select next node
//	Backspace   - Clear selection
//	r / R       - Rotate selected node +/- one step
//	c           - Cycle selected node color
//	Arrows      - Pan camera up/down/left/right
//	w / s       - Move camera forward/back
//	0 / Home    - Reset camera
//	x           - Toggle wireframe
//	?           - Toggle HUD
//	p           - Save a PNG screenshot
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/taigrr/diorama/internal/config"
	"github.com/taigrr/diorama/internal/logging"
	"github.com/taigrr/diorama/pkg/scene"
	"github.com/taigrr/diorama/pkg/scenefile"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logFile    string
	logLevel   string
	fps        int
	watch      bool
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	root := &cobra.Command{
		Use:   "diorama [scene]",
		Short: "View and pose a scene graph of cubes in the terminal",
		Long: "diorama renders a scene file (.toml, .gltf or .glb) in the terminal.\n" +
			"Without a scene it shows the built-in chair.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			logger, closeLog, err := viewerLogger(opts)
			if err != nil {
				return err
			}
			defer closeLog()

			s, source, err := loadScene(args)
			if err != nil {
				return err
			}
			logger.Info("starting", "scene", source, "nodes", s.Len(), "fps", cfg.FPS)
			return newViewer(cfg, s, source, logger).run(cmd.Context(), opts.watch)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "config file (default: per-user config dir)")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.Flags().StringVar(&opts.logFile, "log-file", "", "write viewer logs to this file")
	root.Flags().IntVar(&opts.fps, "fps", 0, "target frames per second (overrides config)")
	root.Flags().BoolVar(&opts.watch, "watch", false, "reload the scene file when it changes")

	root.AddCommand(newExportCmd(&opts), newDumpCmd(&opts), newInitCmd(&opts))
	return root
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export <in> <out>",
		Short: "Convert a scene between TOML and glTF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(cmd.ErrOrStderr(), opts.logLevel)
			if err != nil {
				return err
			}
			s, err := scenefile.Open(args[0])
			if err != nil {
				return err
			}
			if err := scenefile.Save(args[1], s); err != nil {
				return err
			}
			logger.Info("exported", "from", args[0], "to", args[1], "nodes", s.Len())
			return nil
		},
	}
}

func newDumpCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [scene]",
		Short: "Print every node's world transform",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(cmd.ErrOrStderr(), opts.logLevel)
			if err != nil {
				return err
			}
			s, source, err := loadScene(args)
			if err != nil {
				return err
			}
			logger.Debug("dump", "scene", source, "nodes", s.Len())
			return dump(cmd.OutOrStdout(), s)
		},
	}
}

func newInitCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write the built-in chair as a TOML scene to start editing from",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(cmd.ErrOrStderr(), opts.logLevel)
			if err != nil {
				return err
			}
			path := "scene.toml"
			if len(args) > 0 {
				path = args[0]
			}
			f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if err != nil {
				return fmt.Errorf("init scene: %w", err)
			}
			if _, err := f.Write(scenefile.DefaultSource()); err != nil {
				f.Close()
				return fmt.Errorf("init scene: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("init scene: %w", err)
			}
			logger.Info("wrote scene", "path", path)
			return nil
		},
	}
}

// loadConfig reads --config, or the per-user file when the flag is unset,
// and applies flag overrides.
func loadConfig(cmd *cobra.Command, opts rootOptions) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("fps") {
		cfg.FPS = opts.fps
	}
	return cfg, cfg.Validate()
}

// viewerLogger logs to --log-file, or nowhere: the viewer owns the terminal.
func viewerLogger(opts rootOptions) (*log.Logger, func() error, error) {
	if opts.logFile == "" {
		return logging.Discard(), func() error { return nil }, nil
	}
	return logging.OpenFile(opts.logFile, opts.logLevel)
}

// loadScene opens the scene named by args, or the built-in chair. The
// returned source is the path, empty for the chair.
func loadScene(args []string) (*scene.Scene, string, error) {
	if len(args) == 0 {
		return scenefile.DefaultScene(), "", nil
	}
	s, err := scenefile.Open(args[0])
	if err != nil {
		return nil, "", err
	}
	return s, args[0], nil
}

// dump writes the hierarchy with each node's world transform.
func dump(w io.Writer, s *scene.Scene) error {
	return s.Walk(func(n *scene.Node, depth int) error {
		world, err := n.Transform()
		if err != nil {
			return err
		}
		indent := fmt.Sprintf("%*s", depth*2, "")
		t := world.Translation()
		if _, err := fmt.Fprintf(w, "%s%s (%s) at (%.3f, %.3f, %.3f) color %s\n",
			indent, n.Name(), n.Shape(), t.X, t.Y, t.Z, n.Color()); err != nil {
			return err
		}
		for row := range 4 {
			if _, err := fmt.Fprintf(w, "%s  [%8.3f %8.3f %8.3f %8.3f]\n", indent,
				world.Get(row, 0), world.Get(row, 1), world.Get(row, 2), world.Get(row, 3)); err != nil {
				return err
			}
		}
		return nil
	})
}
