package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-photonmap/pkg/config"
	"github.com/df07/go-photonmap/pkg/core"
	"github.com/df07/go-photonmap/pkg/photonmap"
	"github.com/df07/go-photonmap/pkg/preview"
	"github.com/df07/go-photonmap/pkg/scene"
	"github.com/df07/go-photonmap/pkg/tracer"
)

// options are the parsed command line flags
type options struct {
	sceneName  string
	configPath string
	outputRoot string
	preview    bool
	flags      config.Flags
	help       bool
}

// newFlagSet registers every flag on a new set writing into opts
func newFlagSet(opts *options, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("photonmap", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.sceneName, "scene", "default", "Scene: "+strings.Join(scene.Names(), ", "))
	fs.StringVar(&opts.configPath, "config", "", "JSON photon settings file (replaces the scene's settings)")
	fs.StringVar(&opts.outputRoot, "output", "output", "Directory for preview images")
	fs.BoolVar(&opts.preview, "preview", true, "Write a WebP preview of the surface photon map")
	fs.IntVar(&opts.flags.Workers, "workers", 0, "Number of shooting workers (0 = CPU count)")
	fs.IntVar(&opts.flags.SurfaceCount, "count", 0, "Target number of surface photons (0 = use separation)")
	fs.StringVar(&opts.flags.SaveFile, "save", "", "Save the photon maps to this file")
	fs.StringVar(&opts.flags.LoadFile, "load", "", "Load the photon maps from this file instead of shooting")
	fs.BoolVar(&opts.flags.Disable, "disable", false, "Disable photon mapping")
	fs.BoolVar(&opts.help, "help", false, "Show help information")
	return fs
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	if err := newFlagSet(&opts, output).Parse(args); err != nil {
		return options{}, err
	}
	if opts.flags.SaveFile != "" && opts.flags.LoadFile != "" {
		return options{}, config.ErrSaveAndLoad
	}
	return opts, nil
}

func printHelp() {
	fmt.Println("Photon Map Builder")
	fmt.Println("Usage: photonmap [options]")
	fmt.Println()
	fmt.Println("Options:")
	newFlagSet(&options{}, os.Stdout).PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, name := range scene.Names() {
		fmt.Printf("  %s\n", name)
	}
	fmt.Println()
	fmt.Println("Previews are saved to output/<scene>/photons_<timestamp>.webp")
}

// createScene builds the named scene and applies the settings file and flag overrides
func createScene(name, configPath string, flags config.Flags) (*scene.Scene, error) {
	s, err := scene.Builtin(name)
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		settings, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		s.Photons = settings
	}
	s.Photons.Resolve(flags)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// previewPath returns output/<scene>/photons_<timestamp>.webp
func previewPath(root, sceneName string, now time.Time) string {
	return filepath.Join(root, sceneName, fmt.Sprintf("photons_%s.webp", now.Format("20060102_150405")))
}

func run(ctx context.Context, opts options, logger core.Logger) error {
	s, err := createScene(opts.sceneName, opts.configPath, opts.flags)
	if err != nil {
		return err
	}
	logger.Printf("Using %s scene with %d workers...\n", s.Name, s.Photons.Workers)

	pipeline := photonmap.NewPipeline(s, tracer.New(s), logger)
	pipeline.Reporter = photonmap.NewLogReporter(logger)

	startTime := time.Now()
	result, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	logger.Printf("Photon mapping completed in %v\n", time.Since(startTime))

	if !opts.preview || !s.Photons.Enabled {
		return nil
	}
	filename := previewPath(opts.outputRoot, s.Name, time.Now())
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := preview.Save(filename, result.Maps.Surface, preview.DefaultOptions()); err != nil {
		return err
	}
	logger.Printf("Preview saved as %s\n", filename)
	return nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printHelp()
			return
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}
	if opts.help {
		printHelp()
		return
	}

	fmt.Println("Starting photon map builder...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, photonmap.NewDefaultLogger()); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
