package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/athapong/adf-mcp/pkg/adf"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type options struct {
	mode      string
	input     string
	maxDepth  int
	underline string
	warnings  bool
}

func main() {
	var opts options
	logLevel := flag.String("log-level", "info", "Logging level (debug, info, warn, error)")
	flag.StringVar(&opts.mode, "mode", "render", "render: ADF to Markdown, coerce: text or JSON to an ADF document")
	flag.StringVar(&opts.input, "input", "-", "Input file, - for stdin")
	flag.IntVar(&opts.maxDepth, "max-depth", adf.DefaultMaxDepth, "Maximum nesting depth to render")
	flag.StringVar(&opts.underline, "underline", "html", "Underline rendering: html or omit")
	flag.BoolVar(&opts.warnings, "warnings", false, "Log conversion warnings")
	flag.Parse()

	// Configure logging
	logger := logrus.New()
	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatalf("Invalid log level: %v", err)
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if err := run(opts, os.Stdin, os.Stdout, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(opts options, stdin io.Reader, stdout io.Writer, logger *logrus.Logger) error {
	data, err := readInput(opts.input, stdin)
	if err != nil {
		return err
	}
	logger.Debugf("Read %d bytes from %s", len(data), opts.input)

	switch opts.mode {
	case "render":
		underline := adf.UnderlineHTML
		switch opts.underline {
		case "html":
		case "omit":
			underline = adf.UnderlineOmit
		default:
			return fmt.Errorf("invalid underline mode %q", opts.underline)
		}

		renderer := adf.NewRenderer(adf.WithMaxDepth(opts.maxDepth), adf.WithUnderline(underline))
		res := renderer.RenderValue(string(data))
		if opts.warnings {
			for _, w := range res.Warnings {
				logger.WithFields(logrus.Fields{
					"type":      w.Type,
					"node_type": w.NodeType,
				}).Warn(w.Message)
			}
		}
		_, err = io.WriteString(stdout, res.Markdown)
		return errors.Wrap(err, "failed to write markdown")

	case "coerce":
		doc := adf.Coerce(data)
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal document")
		}
		_, err = fmt.Fprintln(stdout, string(out))
		return errors.Wrap(err, "failed to write document")

	default:
		return fmt.Errorf("unknown mode %q, use render or coerce", opts.mode)
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		return data, errors.Wrap(err, "failed to read stdin")
	}
	data, err := os.ReadFile(path)
	return data, errors.Wrapf(err, "failed to read %s", path)
}
