package config

import (
	"flag"
	"fmt"
	"io"
)

// Parse builds a Config from command line arguments. The file named by -config
// is loaded first; flags given explicitly on the command line override it.
func Parse(name string, args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)

	def := DefaultConfig()
	var (
		path    string
		flagged Config
		backend string
	)
	fs.StringVar(&path, "config", "", "YAML configuration file")
	fs.StringVar(&flagged.ImageSource, "image", "", "image to annotate")
	fs.StringVar(&flagged.OutputName, "output", "", "output table name (written as <name>.csv)")
	fs.StringVar(&flagged.ImageID, "id", "", "image identifier stored with every record")
	fs.IntVar(&flagged.RequiredPixels, "pixels", def.RequiredPixels, "pixels required per commit")
	fs.StringVar(&flagged.Group, "group", def.Group, "patient group label")
	fs.IntVar(&flagged.Scale, "scale", def.Scale, "long side of the display window in pixels")
	fs.BoolVar(&flagged.SecondMonitor, "second-monitor", def.SecondMonitor, "place windows on the second monitor")
	fs.StringVar(&flagged.SaveDir, "save-dir", def.SaveDir, "directory for output and staging files")
	fs.BoolVar(&flagged.Resume, "resume", false, "resume picks staged by an interrupted pass")
	fs.StringVar(&backend, "backend", string(def.Backend), "image backend: opencv|raster")
	fs.IntVar(&flagged.ZoomHalfSize, "zoom-half", def.ZoomHalfSize, "half size of the zoom crop")
	fs.StringVar(&flagged.LogLevel, "log-level", def.LogLevel, "debug|info|warn|error")
	fs.BoolVar(&flagged.JSONLogs, "json-logs", false, "emit JSON logs")
	fs.StringVar(&flagged.WriteConfig, "write-config", "", "write the effective configuration to this YAML file and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	flagged.Backend = Backend(backend)

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "image":
			cfg.ImageSource = flagged.ImageSource
		case "output":
			cfg.OutputName = flagged.OutputName
		case "id":
			cfg.ImageID = flagged.ImageID
		case "pixels":
			cfg.RequiredPixels = flagged.RequiredPixels
		case "group":
			cfg.Group = flagged.Group
		case "scale":
			cfg.Scale = flagged.Scale
		case "second-monitor":
			cfg.SecondMonitor = flagged.SecondMonitor
		case "save-dir":
			cfg.SaveDir = flagged.SaveDir
		case "resume":
			cfg.Resume = flagged.Resume
		case "backend":
			cfg.Backend = flagged.Backend
		case "zoom-half":
			cfg.ZoomHalfSize = flagged.ZoomHalfSize
		case "log-level":
			cfg.LogLevel = flagged.LogLevel
		case "json-logs":
			cfg.JSONLogs = flagged.JSONLogs
		}
	})

	cfg.WriteConfig = flagged.WriteConfig
	return cfg, nil
}
