// Command f451-comms is a one-shot sender: load a config file, resolve the
// selected channels, send one message, and report per-channel results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/mlanser/f451-comms/pkg/comms"
	"github.com/mlanser/f451-comms/pkg/config"
	"github.com/mlanser/f451-comms/pkg/logger"
	"github.com/mlanser/f451-comms/pkg/logger/adapters"
	"github.com/mlanser/f451-comms/pkg/provider"
	"github.com/mlanser/f451-comms/pkg/utils/text"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the INI config file")
		channels   = flag.String("channels", "", "channel selector (name, alias, |-delimited list, or 'all'); defaults to the configured channel list")
		msg        = flag.String("msg", "", "message to send")
		subject    = flag.String("subject", "", "subject line for email channels")
		debug      = flag.Bool("debug", false, "enable debug logging")
		suppress   = flag.Bool("suppress", false, "capture vendor failures as failure responses instead of errors")
	)
	flag.Parse()

	if *configPath == "" || *msg == "" {
		fmt.Fprintln(os.Stderr, "both -config and -msg are required")
		flag.Usage()
		os.Exit(2)
	}

	level := logger.Info
	zlevel := zerolog.InfoLevel
	if *debug {
		level = logger.Debug
		zlevel = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zlevel).
		With().Timestamp().Logger()
	log := adapters.NewZerologAdapter(zl, level)

	if err := run(log, *configPath, *channels, *msg, *subject, *suppress); err != nil {
		log.Error("send failed", "error", err)
		os.Exit(1)
	}
}

func run(log logger.Logger, configPath, channels, msg, subject string, suppress bool) error {
	ctx := context.Background()

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	dispatcher, err := comms.New(ctx, cfg, comms.WithLogger(log))
	if err != nil {
		return err
	}

	opts := &provider.SendOptions{
		Subject:        subject,
		SuppressErrors: suppress,
	}
	if channels != "" {
		opts.Channels = text.SplitList(channels)
	}

	responses, err := dispatcher.SendMessage(ctx, msg, opts)
	failed := 0
	for _, r := range responses {
		if r.IsOK() {
			log.Info("delivered", "channel", r.Provider)
			continue
		}
		failed++
		log.Warn("delivery failed", "channel", r.Provider, "errors", r.Errors)
	}
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sends failed", failed, len(responses))
	}

	log.Info("all sends delivered", "count", len(responses))
	return nil
}
