package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"strings"
	"time"

	sim "github.com/odrive-host/odrive-go/internal/mock"
	plog "github.com/odrive-host/odrive-go/pkg/log"
	"github.com/odrive-host/odrive-go/pkg/odrive"
	"github.com/odrive-host/odrive-go/pkg/persistence"
	"github.com/odrive-host/odrive-go/pkg/schema"
	"github.com/odrive-host/odrive-go/pkg/telemetry"
	"github.com/odrive-host/odrive-go/pkg/usb"
)

// app owns the session and everything attached to it.
type app struct {
	session   *odrive.Session
	cache     *persistence.SchemaStore
	capture   *plog.FileLogger
	providers *telemetry.Providers
}

func newApp(ctx context.Context, cfg *Config, logOut io.Writer) (*app, error) {
	a := &app{}

	level := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	opts := []odrive.Option{
		odrive.WithLogger(logger),
		odrive.WithTimeout(cfg.Timeout),
	}

	var protocol []plog.Logger
	if cfg.ProtocolLog != "" {
		fl, err := plog.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			return nil, fmt.Errorf("protocol log: %w", err)
		}
		a.capture = fl
		protocol = append(protocol, fl)
		log.Printf("Protocol log: %s", cfg.ProtocolLog)
	}
	if level <= slog.LevelDebug {
		protocol = append(protocol, plog.NewSlogAdapter(logger))
	}
	if len(protocol) > 0 {
		opts = append(opts, odrive.WithProtocolLogger(plog.NewMultiLogger(protocol...)))
	}

	if cfg.Telemetry {
		p, err := telemetry.NewStdoutProviders(logOut)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("telemetry: %w", err)
		}
		a.providers = p
		opts = append(opts, odrive.WithHook(telemetry.NewHook(p.Config(cfg.Serial))))
	}

	if cfg.SchemaCache != "" {
		a.cache = persistence.NewSchemaStore(cfg.SchemaCache)
	}

	if cfg.Simulate {
		serial := usb.FormatSerial(sim.DemoSerial)
		log.Printf("Using simulated device %s", serial)
		a.session = odrive.NewSession(sim.NewDemo(), append(opts, odrive.WithSerial(serial))...)
		return a, nil
	}

	session, err := odrive.Connect(ctx, cfg.Serial, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	log.Printf("Connected to %s", session.Serial())
	a.session = session
	return a, nil
}

// ensureSchema installs the cached schema for the device, or downloads it
// when there is none, it no longer matches the device, or refresh is set.
func (a *app) ensureSchema(ctx context.Context, refresh bool) error {
	serial := a.session.Serial()
	if a.cache != nil && serial != "" && !refresh {
		entry, err := a.cache.Load(serial)
		if err != nil {
			log.Printf("Warning: schema cache: %v", err)
		}
		if entry != nil {
			if a.useCached(ctx, entry) {
				return nil
			}
		}
	}
	return a.reload(ctx)
}

// useCached installs entry if it parses and still matches the device.
func (a *app) useCached(ctx context.Context, entry *persistence.CachedSchema) bool {
	doc := []byte(entry.Document)
	root, err := schema.Parse(doc)
	if err != nil {
		log.Printf("Warning: discarding cached schema: %v", err)
		return false
	}

	ok, err := schema.Verify(ctx, a.session, doc)
	if err != nil {
		log.Printf("Warning: verifying cached schema: %v", err)
		return false
	}
	if !ok {
		log.Printf("Cached schema does not match device, reloading")
		return false
	}

	a.session.UseSchema(root)
	log.Printf("Using cached schema from %s", entry.SavedAt.Format(time.RFC3339))
	return true
}

// reload downloads the schema and refreshes the cache.
func (a *app) reload(ctx context.Context) error {
	root, err := a.session.LoadSchema(ctx)
	if err != nil {
		return err
	}
	if a.cache != nil && a.session.Serial() != "" {
		if err := a.cache.Save(a.session.Serial(), root.Document()); err != nil {
			log.Printf("Warning: failed to cache schema: %v", err)
		}
	}
	return nil
}

// Close closes the session and flushes captures and telemetry.
func (a *app) Close() error {
	var errs []error
	if a.session != nil {
		errs = append(errs, a.session.Close())
	}
	if a.capture != nil {
		errs = append(errs, a.capture.Close())
	}
	if a.providers != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.providers.Shutdown(ctx))
		cancel()
	}
	return errors.Join(errs...)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
