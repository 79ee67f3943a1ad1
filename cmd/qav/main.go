package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kraitsura/qa_viewer/pkg/config"
	"github.com/kraitsura/qa_viewer/pkg/logging"
	"github.com/kraitsura/qa_viewer/pkg/source"
	"github.com/kraitsura/qa_viewer/pkg/ui"
	"github.com/kraitsura/qa_viewer/pkg/watcher"
)

const appVersion = "0.2.0"

func main() {
	configPath := flag.String("config", config.DefaultPath(), "Path to config file")
	serverURL := flag.String("server", "", "Question/answer service URL (overrides config)")
	contentDir := flag.String("content", "", "Offline snapshot directory (overrides config)")
	help := flag.Bool("help", false, "Show help")
	version := flag.Bool("version", false, "Show version")
	flag.Parse()

	if *help {
		fmt.Println("Usage: qav [options]")
		fmt.Println("\nA TUI browser for question/answer content and its lineage.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *version {
		fmt.Println("qav version " + appVersion)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *contentDir != "" {
		cfg.ContentDir = *contentDir
	}

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = logging.DefaultPath()
	}
	log, closeLog, err := logging.Open(logPath)
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Pick the content backend: the remote service when configured, else an
	// offline snapshot next to us.
	var src source.Source
	var fileSrc *source.FileSource
	switch {
	case cfg.ServerURL != "":
		src = source.NewRemoteSource(cfg.ServerURL, log)
		log.Info().Str("server", cfg.ServerURL).Msg("using remote source")
	default:
		dir := cfg.ContentDir
		if dir == "" {
			dir, _ = os.Getwd()
		}
		snap, kind, err := source.OpenSnapshot(dir)
		if err != nil {
			fmt.Printf("Error opening snapshot: %v\n", err)
			os.Exit(1)
		}
		if snap == nil {
			fmt.Printf("No content found in %s.\n", dir)
			fmt.Println("Point qav at a service with -server or at a snapshot directory with -content.")
			os.Exit(1)
		}
		src = snap
		fileSrc, _ = snap.(*source.FileSource)
		log.Info().Str("dir", dir).Stringer("kind", kind).Msg("using offline snapshot")
	}

	questions, err := src.RecentQuestions(context.Background(), 0)
	if err != nil {
		fmt.Printf("Error loading questions: %v\n", err)
		os.Exit(1)
	}
	if len(questions) == 0 {
		fmt.Println("No questions found.")
		os.Exit(0)
	}

	m := ui.NewBrowserModel(src, cfg, questions, log)
	p := tea.NewProgram(m, tea.WithAltScreen())

	// JSONL snapshots are cheap to reload in place, so watch them and push
	// refreshed content into the running program.
	if fileSrc != nil {
		w, err := watcher.Watch(fileSrc.Dir(), 0, func() {
			if err := fileSrc.Reload(); err != nil {
				p.Send(ui.ContentReloadedMsg{Err: err})
				return
			}
			qs, err := fileSrc.RecentQuestions(context.Background(), 0)
			p.Send(ui.ContentReloadedMsg{Questions: qs, Err: err})
		})
		if err != nil {
			log.Warn().Err(err).Msg("snapshot watch unavailable")
		} else {
			defer w.Close()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running viewer: %v\n", err)
		os.Exit(1)
	}
}
