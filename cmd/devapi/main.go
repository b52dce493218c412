// Command devapi serves the in-memory sample tracking backend on a local
// port so the CLI can be tried without the real service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
	"github.com/dmitrijs2005/samplekeeper/internal/logging"
	"github.com/dmitrijs2005/samplekeeper/internal/testutil/fakeapi"
)

func run(ctx context.Context, cmd *cli.Command) error {
	log := logging.New(logging.Options{Level: cmd.String("log-level")})

	var opts []fakeapi.Option
	opts = append(opts, fakeapi.WithLogger(log))
	if cmd.Bool("verify") {
		opts = append(opts, fakeapi.WithVerification())
	}
	if env := cmd.String("envelope"); env != "" {
		opts = append(opts, fakeapi.WithEnvelope(env))
	}

	srv, err := fakeapi.New(opts...)
	if err != nil {
		return fmt.Errorf("init backend: %w", err)
	}

	if cmd.Bool("demo") {
		if err := seedDemo(srv); err != nil {
			return fmt.Errorf("seed demo data: %w", err)
		}
		log.Info(ctx, "demo account ready", "username", "demo", "password", "demo-password")
	}

	httpServer := &http.Server{
		Addr:              cmd.String("addr"),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gCtx, "listening", "address", httpServer.Addr, "base_path", fakeapi.BasePath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			log.Info(gCtx, "shutting down", "signal", sig.String())
		case <-gCtx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func seedDemo(srv *fakeapi.Server) error {
	if _, err := srv.AddUser("demo", "demo-password", "demo@example.org", "Demo", "Curator"); err != nil {
		return err
	}

	srv.Seed("requesters", models.Record{
		"first_name":            "Ada",
		"last_name":             "Lovelace",
		"contact_person_email":  "ada@example.org",
		"requester_institution": "Royal Botanic Gardens",
		"institution_location":  "Kew",
	})
	srv.Seed("requests", models.Record{
		"requester":              1,
		"request_date":           "2024-03-01",
		"tissue_sample_quantity": 12,
		"has_manifest_file":      1,
	})
	srv.Seed("shipments", models.Record{
		"request":         1,
		"shipment_date":   "2024-03-15",
		"tracking_number": "TRK-0001",
	})
	srv.Seed("metadata", models.Record{
		"request":            1,
		"original_sample_id": "RBG-0001",
		"scientific_name":    "Quercus robur",
		"family":             "Fagaceae",
		"genus":              "Quercus",
	})
	srv.Seed("tissues", models.Record{
		"request":                        1,
		"shipment":                       1,
		"metadata":                       1,
		"tissue_barcode":                 "TIS-0001",
		"is_in_jacq":                     0,
		"tissue_sample_storage_location": "Freezer A / Rack 3",
	})
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "devapi",
		Usage:  "In-memory sample tracking backend for local use",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "listen address",
				Value:   ":8000",
				Sources: cli.EnvVars("DEVAPI_ADDR"),
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "require email verification after registration",
			},
			&cli.StringFlag{
				Name:  "envelope",
				Usage: "wrap list responses under this key (results or data)",
			},
			&cli.BoolFlag{
				Name:  "demo",
				Usage: "create a demo account and sample records",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "debug, info, warn or error",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "devapi: %v\n", err)
		os.Exit(1)
	}
}
