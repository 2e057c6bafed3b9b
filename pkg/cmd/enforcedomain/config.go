package enforcedomain

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"go.minekube.com/enforcedomain/pkg/config"
	"go.minekube.com/enforcedomain/pkg/configs"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Output default configuration file",
		Description: `Output the default configuration file to stdout or a file.
You can redirect to a file or use the --write flag:

	enforcedomain config > config.yml
	enforcedomain config --write                # Writes to config.yml
	enforcedomain config --format toml --write  # Writes to config.toml

Available formats:
  - yml (default): Commented configuration file
  - yaml: Plain YAML of all defaults
  - toml: Plain TOML of all defaults`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Config format: yml, yaml or toml",
				Value:   "yml",
			},
			&cli.BoolFlag{
				Name:    "write",
				Aliases: []string{"w"},
				Usage:   "Write config to config.<format> instead of stdout",
			},
		},
		Action: func(c *cli.Context) error {
			format := c.String("format")
			configBytes, err := renderDefaultConfig(format)
			if err != nil {
				return cli.Exit(err, 1)
			}

			if c.Bool("write") {
				outputFile := "config." + format
				if format == "yaml" {
					outputFile = configs.DefaultFileName
				}
				if err = os.WriteFile(outputFile, configBytes, 0o644); err != nil {
					return cli.Exit(fmt.Errorf("error writing config to %q: %w", outputFile, err), 1)
				}
				_, _ = fmt.Fprintf(c.App.Writer, "Configuration written to %s\n", outputFile)
				return nil
			}

			if _, err = c.App.Writer.Write(configBytes); err != nil {
				return cli.Exit(fmt.Errorf("error writing config: %w", err), 1)
			}
			return nil
		},
	}
}

func renderDefaultConfig(format string) ([]byte, error) {
	var (
		buf = new(bytes.Buffer)
		enc interface{ Encode(any) error }
	)
	switch format {
	case "yml":
		return configs.DefaultConfigBytes, nil
	case "yaml":
		e := yaml.NewEncoder(buf)
		e.SetIndent(2)
		enc = e
	case "toml":
		enc = toml.NewEncoder(buf)
	default:
		return nil, fmt.Errorf("unknown config format: %s (valid formats: yml, yaml, toml)", format)
	}
	if err := enc.Encode(config.Default()); err != nil {
		return nil, fmt.Errorf("error encoding %s config: %w", format, err)
	}
	if c, ok := enc.(io.Closer); ok {
		_ = c.Close()
	}
	return buf.Bytes(), nil
}
