// Package cli parses command line options and runs one intraday bar query.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"intradaybar/internal/feature/intradaybar/domain/entity"
	"intradaybar/internal/feature/intradaybar/usecase"
	"intradaybar/internal/shared/tradingday"
)

// DefaultSecurity is queried when neither flags nor the options file name a security.
const DefaultSecurity = "IBM US Equity"

// Options is the fully resolved command line.
type Options struct {
	Query      entity.QueryOptions
	ConfigPath string
	OutPath    string
	Format     string
	Store      bool
}

// FileOptions is the YAML options file layout.
type FileOptions struct {
	Securities        []string `yaml:"securities"`
	EventTypes        []string `yaml:"eventTypes"`
	BarInterval       int      `yaml:"barInterval"`
	StartDateTime     string   `yaml:"startDateTime"`
	EndDateTime       string   `yaml:"endDateTime"`
	GapFillInitialBar *bool    `yaml:"gapFillInitialBar"`
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// LoadFile reads a YAML options file.
func LoadFile(path string) (FileOptions, error) {
	var fo FileOptions
	data, err := os.ReadFile(path)
	if err != nil {
		return fo, fmt.Errorf("failed to read options file '%s': %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fo); err != nil {
		return fo, fmt.Errorf("failed to parse options file '%s': %w", path, err)
	}
	return fo, nil
}

// exchange decides which day the default window falls on.
var exchange = tradingday.New(tradingday.DefaultMIC)

// DefaultRange returns the 13:30 to 14:30 UTC window of the NYSE business day before now.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	start := exchange.Previous(now).Add(13*time.Hour + 30*time.Minute)
	return start, start.Add(time.Hour)
}

// Parse resolves args into Options. Precedence is flags, then the options
// file, then defaults. flag.ErrHelp is returned for -h.
func Parse(args []string, now time.Time, stderr io.Writer) (Options, error) {
	var (
		opts       Options
		securities stringList
		eventTypes stringList
		interval   int
		startStr   string
		endStr     string
		gapFill    bool
	)

	fs := flag.NewFlagSet("intradaybar", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Var(&securities, "s", "security to request (repeatable; only the first is sent)")
	fs.Var(&eventTypes, "e", "event type: TRADE, BID, ASK, ... (repeatable; only the first is sent)")
	fs.IntVar(&interval, "b", usecase.DefaultBarInterval, "bar interval in minutes")
	fs.StringVar(&startStr, "sd", "", "start datetime, YYYY-MM-DDTHH:MM[:SS] UTC")
	fs.StringVar(&endStr, "ed", "", "end datetime, YYYY-MM-DDTHH:MM[:SS] UTC")
	fs.BoolVar(&gapFill, "g", false, "gap fill the initial bar")
	fs.StringVar(&opts.ConfigPath, "config", "", "YAML options file")
	fs.StringVar(&opts.OutPath, "out", "", "also write bars to this file")
	fs.StringVar(&opts.Format, "format", "csv", "file format for -out: csv, json, parquet")
	fs.BoolVar(&opts.Store, "store", false, "also store bars in the database")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	q := entity.QueryOptions{BarInterval: usecase.DefaultBarInterval}

	if opts.ConfigPath != "" {
		fo, err := LoadFile(opts.ConfigPath)
		if err != nil {
			return opts, err
		}
		if err := applyFile(&q, fo); err != nil {
			return opts, err
		}
	}

	if len(securities) > 0 {
		q.Securities = securities
	}
	if len(eventTypes) > 0 {
		q.EventTypes = eventTypes
	}
	if set["b"] {
		q.BarInterval = interval
	}
	if set["g"] {
		q.GapFillInitialBar = gapFill
	}
	if set["sd"] {
		t, err := entity.ParseDateTime(startStr)
		if err != nil {
			return opts, fmt.Errorf("-sd: %w", err)
		}
		q.StartDateTime = t
	}
	if set["ed"] {
		t, err := entity.ParseDateTime(endStr)
		if err != nil {
			return opts, fmt.Errorf("-ed: %w", err)
		}
		q.EndDateTime = t
	}

	applyDefaults(&q, now)

	if opts.OutPath == "" && set["format"] {
		return opts, errors.New("-format requires -out")
	}
	opts.Query = q
	return opts, nil
}

// QueryFromFile resolves the options file at path, filling unset values with defaults.
func QueryFromFile(path string, now time.Time) (entity.QueryOptions, error) {
	q := entity.QueryOptions{BarInterval: usecase.DefaultBarInterval}
	fo, err := LoadFile(path)
	if err != nil {
		return q, err
	}
	if err := applyFile(&q, fo); err != nil {
		return q, err
	}
	applyDefaults(&q, now)
	return q, nil
}

func applyDefaults(q *entity.QueryOptions, now time.Time) {
	if len(q.Securities) == 0 {
		q.Securities = []string{DefaultSecurity}
	}
	if len(q.EventTypes) == 0 {
		q.EventTypes = []string{usecase.DefaultEventType}
	}
	if q.StartDateTime.IsZero() || q.EndDateTime.IsZero() {
		start, end := DefaultRange(now)
		if q.StartDateTime.IsZero() {
			q.StartDateTime = start
		}
		if q.EndDateTime.IsZero() {
			q.EndDateTime = end
		}
	}
}

func applyFile(q *entity.QueryOptions, fo FileOptions) error {
	q.Securities = fo.Securities
	q.EventTypes = fo.EventTypes
	if fo.BarInterval != 0 {
		q.BarInterval = fo.BarInterval
	}
	if fo.GapFillInitialBar != nil {
		q.GapFillInitialBar = *fo.GapFillInitialBar
	}
	if fo.StartDateTime != "" {
		t, err := entity.ParseDateTime(fo.StartDateTime)
		if err != nil {
			return fmt.Errorf("startDateTime: %w", err)
		}
		q.StartDateTime = t
	}
	if fo.EndDateTime != "" {
		t, err := entity.ParseDateTime(fo.EndDateTime)
		if err != nil {
			return fmt.Errorf("endDateTime: %w", err)
		}
		q.EndDateTime = t
	}
	return nil
}
