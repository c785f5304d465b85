// Package cli implements the s3meta command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/eunmann/s3-meta/internal/logctx"
	"github.com/eunmann/s3-meta/pkg/inventory"
	"github.com/eunmann/s3-meta/pkg/listing"
	"github.com/eunmann/s3-meta/pkg/logging"
	"github.com/eunmann/s3-meta/pkg/metrics"
	"github.com/eunmann/s3-meta/pkg/miniolist"
	"github.com/eunmann/s3-meta/pkg/s3list"
	"github.com/eunmann/s3-meta/pkg/scan"
)

const appName = "s3meta"

// Listing sources selectable with --source.
const (
	SourceS3        = "s3"
	SourceMinio     = "minio"
	SourceInventory = "inventory"
)

// ErrNoLocation is returned when no storage location argument is given.
var ErrNoLocation = errors.New("storage location not provided")

// Options is the parsed command line.
type Options struct {
	Location listing.Location
	Source   string
	MaxKeys  int

	Region   string
	Profile  string
	Endpoint string

	AccessKey string
	SecretKey string
	Insecure  bool

	Manifest string
}

// Opener builds the lister for a run. The returned func releases it.
type Opener func(ctx context.Context, opts Options) (listing.Lister, func() error, error)

// Run executes the command line with args, excluding the program name. The
// report goes to stdout and logs to stderr.
func Run(args []string) error {
	app := NewApp(os.Stdout, os.Stderr, OpenLister)
	return app.RunContext(context.Background(), append([]string{appName}, args...))
}

// NewApp builds the application. open selects and constructs the lister.
func NewApp(stdout, stderr io.Writer, open Opener) *cli.App {
	return &cli.App{
		Name:            appName,
		Usage:           "summarize the objects stored under an S3 location",
		UsageText:       appName + " [options] s3://bucket[/prefix]",
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		Flags:           flags(),
		Action: func(c *cli.Context) error {
			opts, err := parseOptions(c)
			if err != nil {
				return err
			}
			logging.InitWriter(stderr, c.Bool("debug"), c.Bool("log-human"))
			return execute(c.Context, opts, stdout, open)
		},
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "source",
			Usage:   "listing source: s3, minio or inventory",
			Value:   SourceS3,
			EnvVars: []string{"S3META_SOURCE"},
		},
		&cli.IntFlag{
			Name:    "max-keys",
			Usage:   "objects requested per page",
			Value:   listing.DefaultPageSize,
			EnvVars: []string{"S3META_MAX_KEYS"},
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "AWS region (defaults to the SDK configuration)",
			EnvVars: []string{"S3META_REGION"},
		},
		&cli.StringFlag{
			Name:    "profile",
			Usage:   "AWS shared config profile",
			EnvVars: []string{"S3META_PROFILE"},
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "custom S3-compatible endpoint",
			EnvVars: []string{"S3META_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "access-key",
			Usage:   "access key for the minio source",
			EnvVars: []string{"S3META_ACCESS_KEY"},
		},
		&cli.StringFlag{
			Name:    "secret-key",
			Usage:   "secret key for the minio source",
			EnvVars: []string{"S3META_SECRET_KEY"},
		},
		&cli.BoolFlag{
			Name:    "insecure",
			Usage:   "disable TLS for the minio source",
			EnvVars: []string{"S3META_INSECURE"},
		},
		&cli.StringFlag{
			Name:    "manifest",
			Usage:   "S3 Inventory manifest.json URI for the inventory source",
			EnvVars: []string{"S3META_MANIFEST"},
		},
		&cli.BoolFlag{
			Name:    "debug",
			Usage:   "enable debug logging",
			EnvVars: []string{"S3META_DEBUG"},
		},
		&cli.BoolFlag{
			Name:    "log-human",
			Usage:   "human-readable log output",
			EnvVars: []string{"S3META_LOG_HUMAN"},
		},
	}
}

func parseOptions(c *cli.Context) (Options, error) {
	if c.NArg() == 0 {
		return Options{}, ErrNoLocation
	}
	if c.NArg() > 1 {
		return Options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(c.Args().Tail(), " "))
	}

	loc, err := listing.ParseLocation(c.Args().First())
	if err != nil {
		return Options{}, err
	}

	opts := Options{
		Location:  loc,
		Source:    strings.ToLower(c.String("source")),
		MaxKeys:   c.Int("max-keys"),
		Region:    c.String("region"),
		Profile:   c.String("profile"),
		Endpoint:  c.String("endpoint"),
		AccessKey: c.String("access-key"),
		SecretKey: c.String("secret-key"),
		Insecure:  c.Bool("insecure"),
		Manifest:  c.String("manifest"),
	}

	if opts.MaxKeys <= 0 {
		return Options{}, fmt.Errorf("--max-keys must be positive, got %d", opts.MaxKeys)
	}

	switch opts.Source {
	case SourceS3:
	case SourceMinio:
		if opts.Endpoint == "" {
			return Options{}, errors.New("--endpoint is required for the minio source")
		}
	case SourceInventory:
		if opts.Manifest == "" {
			return Options{}, errors.New("--manifest is required for the inventory source")
		}
	default:
		return Options{}, fmt.Errorf("unknown source %q (supported: s3, minio, inventory)", opts.Source)
	}

	return opts, nil
}

func execute(ctx context.Context, opts Options, stdout io.Writer, open Opener) error {
	base := *logging.L()
	logctx.SetDefaultLogger(base)

	ctx = logctx.WithLogger(ctx, base)
	ctx = logctx.WithStr(ctx, "source", opts.Source)
	ctx = logctx.WithStr(ctx, "bucket", opts.Location.Bucket)
	ctx = logctx.WithStr(ctx, "prefix", opts.Location.Prefix)
	log := logctx.FromContext(ctx)

	lister, release, err := open(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn().Err(err).Msg("release lister")
		}
	}()

	log.Info().Int("max_keys", opts.MaxKeys).Msg("listing started")

	chain := metrics.NewChain(metrics.Options{Prefix: opts.Location.Prefix})
	_, err = scan.Run(ctx, chain, lister, stdout)
	return err
}

func noRelease() error { return nil }

// OpenLister builds the lister for opts.Source.
func OpenLister(ctx context.Context, opts Options) (listing.Lister, func() error, error) {
	switch opts.Source {
	case SourceMinio:
		core, err := miniolist.NewCore(miniolist.Config{
			Endpoint:  opts.Endpoint,
			AccessKey: opts.AccessKey,
			SecretKey: opts.SecretKey,
			Region:    opts.Region,
			Insecure:  opts.Insecure,
		})
		if err != nil {
			return nil, nil, err
		}
		return miniolist.NewLister(core, opts.Location, opts.MaxKeys), noRelease, nil

	case SourceInventory:
		client, err := s3list.NewClient(ctx, clientConfig(opts))
		if err != nil {
			return nil, nil, err
		}
		m, err := inventory.LoadManifest(ctx, client, opts.Manifest)
		if err != nil {
			return nil, nil, err
		}
		if m.SourceBucket != "" && m.SourceBucket != opts.Location.Bucket {
			log := logctx.FromContext(ctx)
			log.Warn().
				Str("manifest_bucket", m.SourceBucket).
				Msg("inventory describes a different bucket")
		}
		l, err := inventory.NewLister(client, m, opts.Location.Prefix, opts.MaxKeys)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil

	default:
		client, err := s3list.NewClient(ctx, clientConfig(opts))
		if err != nil {
			return nil, nil, err
		}
		return s3list.NewLister(client, opts.Location, opts.MaxKeys), noRelease, nil
	}
}

func clientConfig(opts Options) s3list.ClientConfig {
	return s3list.ClientConfig{
		Region:   opts.Region,
		Profile:  opts.Profile,
		Endpoint: opts.Endpoint,
	}
}
