// Command kalender prints and exports Dutch year calendars.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"

	"github.com/zapponejosh/jaarkalender/internal/logger"
)

// CLI defines the command-line interface structure
type CLI struct {
	LogLevel string `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level for diagnostics on stderr"`

	Show     ShowCmd     `cmd:"" help:"Print a year or month calendar"`
	Export   ExportCmd   `cmd:"" help:"Write calendar documents (pdf, html, txt, json, yaml, csv, ics)"`
	Holidays HolidaysCmd `cmd:"" help:"List the public holidays of a year"`
	Week     WeekCmd     `cmd:"" help:"Print the ISO week number of a date"`
	Easter   EasterCmd   `cmd:"" help:"Print Easter and the feasts derived from it"`
}

// app carries what every command needs.
type app struct {
	ctx    context.Context
	out    io.Writer
	logger *slog.Logger
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("kalender"),
		kong.Description("Dutch perpetual calendar with ISO week numbers and public holidays"),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := kctx.Run(&app{
		ctx:    ctx,
		out:    os.Stdout,
		logger: logger.New(os.Stderr, cli.LogLevel, "text"),
	})
	kctx.FatalIfErrorf(err)
}
