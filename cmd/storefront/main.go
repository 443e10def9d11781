// Command storefront is a terminal front end for the store: it lists products
// with infinite paging and drives the sign-in, sign-up and image search overlays.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/knpstore/sport-store/internal/apiclient"
	"github.com/knpstore/sport-store/internal/config"
	"github.com/knpstore/sport-store/internal/listing"
	"github.com/knpstore/sport-store/internal/logger"
	"github.com/knpstore/sport-store/internal/overlay"
	"github.com/knpstore/sport-store/internal/session"
	"github.com/knpstore/sport-store/internal/storefront"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}
	// stdout belongs to the UI; logs go to the file unless told otherwise.
	if cfg.Log.Output == "stdout" {
		cfg.Log.Output = "file"
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg.Client, logger.Get(), os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// build wires the storefront. onOverlay sees every overlay transition,
// including the delayed follow-up prompt opened off the input loop.
func build(cfg config.ClientConfig, log *slog.Logger, onOverlay func(overlay.Overlay)) *storefront.Storefront {
	sessions := session.NewManager(session.NewFileStore(cfg.SessionFile))
	client := apiclient.New(cfg.BaseURL, apiclient.WithTimeout(cfg.Timeout), apiclient.WithToken(sessions.Token))

	var source listing.Source
	if cfg.Source == "remote" {
		source = listing.NewRemoteSource(client, 0)
	} else {
		source = listing.NewMockSource(uint64(os.Getpid()), cfg.MockLatency)
	}

	loader := listing.NewLoader(source, listing.WithMaxPages(cfg.MaxPages), listing.WithLogger(log))
	overlays := overlay.New(client, sessions, overlay.WithLogger(log), overlay.WithOnChange(onOverlay))
	return storefront.New(loader, overlays, storefront.NewRegisterPage(client, log), log)
}

func run(ctx context.Context, cfg config.ClientConfig, log *slog.Logger, in io.Reader, out io.Writer) error {
	ui := &terminal{out: &syncWriter{w: out}}
	store := build(cfg, log, ui.renderOverlay)
	defer store.Close()
	ui.store = store

	out = ui.out
	fmt.Fprintln(out, "KNP STORE. Type 'help' for commands.")
	if err := store.Open(ctx); err != nil {
		fmt.Fprintln(out, "could not load products:", apiclient.Message(err))
	}
	ui.renderCards(0)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := make(chan string)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-gctx.Done():
				return nil
			}
		}
		if gctx.Err() != nil {
			return nil
		}
		return sc.Err()
	})
	g.Go(func() error {
		defer cancel()
		for {
			fmt.Fprint(out, "> ")
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if quit := ui.exec(gctx, line); quit {
					return nil
				}
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		// unblock the scanner
		if c, ok := in.(io.Closer); ok {
			_ = c.Close()
		}
		return nil
	})
	return g.Wait()
}
