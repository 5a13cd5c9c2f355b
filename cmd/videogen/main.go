package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	cli "github.com/urfave/cli/v3"

	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/api"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/config"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/fetch"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/models"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/orchestrator"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/pipeline"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/providers/llm"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/refine"
	"github.com/MarcusBloomfield/YoutubeVideoGenerator/internal/textutil"
)

func main() {
	// Optional .env for API keys, matching local development habits.
	_ = godotenv.Load()

	app := &cli.Command{
		Name:  "videogen",
		Usage: "Iterative transcript expansion and topic research for video narration",
		Commands: []*cli.Command{
			serveCmd(),
			expandCmd(),
			researchCmd(),
			generateCmd(),
			keywordsCmd(),
		},
	}
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API for the desktop frontend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Path to YAML config file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			client := newClient(cfg)
			fetcher := &fetch.HTTPFetcher{
				Client:   &http.Client{Timeout: cfg.Fetch.Timeout()},
				MaxBytes: cfg.Fetch.MaxBytes,
			}
			orch := orchestrator.New(client, fetcher)
			mux := http.NewServeMux()
			api.NewServer(orch, cfg.Defaults).Register(mux)

			slog.Info("server listening", "addr", cfg.Listen)
			return http.ListenAndServe(cfg.Listen, cors(mux))
		},
	}
}

func expandCmd() *cli.Command {
	return &cli.Command{
		Name:  "expand",
		Usage: "Expand a transcript file toward a target word count",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "Transcript file to expand", Required: true},
			&cli.IntFlag{Name: "loops", Usage: "Maximum expansion passes", Value: 1},
			&cli.IntFlag{Name: "words", Usage: "Target word count", Value: 1000},
			&cli.StringFlag{Name: "research", Usage: "Optional research file to fold into prompts"},
			&cli.StringFlag{Name: "out", Usage: "Output path (default: expanded_<name> beside the input)"},
			&cli.StringFlag{Name: "config", Usage: "Path to YAML config file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			path := cmd.String("file")
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			research := ""
			if rp := cmd.String("research"); rp != "" {
				b, err := os.ReadFile(rp)
				if err != nil {
					return err
				}
				research = string(b)
			}

			e := &refine.Expander{Client: newClient(cfg), Research: research}
			res, err := e.Expand(ctx, models.NewDocument(string(raw)),
				int(cmd.Int("loops")), int(cmd.Int("words")), printSink())
			if err != nil {
				return err
			}

			out := cmd.String("out")
			if out == "" {
				out = filepath.Join(filepath.Dir(path), "expanded_"+filepath.Base(path))
			}
			if err := os.WriteFile(out, []byte(res.Document.Text()+"\n"), 0o644); err != nil {
				return err
			}
			fmt.Printf("outcome: %s (%d passes, %d words) -> %s\n",
				res.Outcome, res.Passes, res.Document.WordCount(), out)
			if res.Err != nil {
				return fmt.Errorf("run ended early: %w", res.Err)
			}
			return nil
		},
	}
}

func researchCmd() *cli.Command {
	return &cli.Command{
		Name:  "research",
		Usage: "Research a topic from a set of source URLs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "topic", Aliases: []string{"t"}, Usage: "Research topic", Required: true},
			&cli.StringSliceFlag{Name: "url", Aliases: []string{"u"}, Usage: "Source URL (repeatable)", Required: true},
			&cli.IntFlag{Name: "loops", Aliases: []string{"l"}, Usage: "Maximum research passes (default: one per URL)"},
			&cli.StringFlag{Name: "out", Usage: "Output path (default: Research/<topic>.txt)"},
			&cli.StringFlag{Name: "config", Usage: "Path to YAML config file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			topic := cmd.String("topic")
			urls := cmd.StringSlice("url")
			loops := int(cmd.Int("loops"))
			if loops < 1 {
				loops = len(urls)
			}

			r := &refine.Researcher{
				Client: newClient(cfg),
				Fetcher: &fetch.HTTPFetcher{
					Client:   &http.Client{Timeout: cfg.Fetch.Timeout()},
					MaxBytes: cfg.Fetch.MaxBytes,
				},
			}
			res, err := r.Research(ctx, topic, urls, loops, printSink())
			if err != nil {
				return err
			}

			out := cmd.String("out")
			if out == "" {
				if err := os.MkdirAll("Research", 0o755); err != nil {
					return err
				}
				out = filepath.Join("Research", topicFilename(topic)+".txt")
			}
			if err := os.WriteFile(out, []byte(res.Synthesis.Text()+"\n"), 0o644); err != nil {
				return err
			}
			for _, s := range res.Sources {
				fmt.Printf("  %-15s %s\n", s.Status, s.URL)
			}
			fmt.Printf("outcome: %s (%d passes) -> %s\n", res.Outcome, res.Passes, out)
			if res.Err != nil {
				return fmt.Errorf("run ended early: %w", res.Err)
			}
			return nil
		},
	}
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a fresh narration transcript for a topic",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "topic", Aliases: []string{"t"}, Usage: "Video topic", Required: true},
			&cli.StringFlag{Name: "research", Usage: "Optional research file to ground the transcript"},
			&cli.BoolFlag{Name: "purify", Usage: "Clean the result for text-to-speech narration"},
			&cli.StringFlag{Name: "out", Usage: "Output path (default: <topic>.txt)"},
			&cli.StringFlag{Name: "config", Usage: "Path to YAML config file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			research := ""
			if rp := cmd.String("research"); rp != "" {
				b, err := os.ReadFile(rp)
				if err != nil {
					return err
				}
				research = string(b)
			}

			p := &pipeline.Pipeline{Client: newClient(cfg)}
			topic := cmd.String("topic")
			text, err := p.GenerateTranscript(ctx, topic, research)
			if err != nil {
				return err
			}
			if cmd.Bool("purify") {
				if text, err = p.PurifyTranscript(ctx, text); err != nil {
					return err
				}
			}

			out := cmd.String("out")
			if out == "" {
				out = topicFilename(topic) + ".txt"
			}
			if err := os.WriteFile(out, []byte(text+"\n"), 0o644); err != nil {
				return err
			}
			fmt.Printf("wrote %d words -> %s\n", textutil.WordCount(text), out)
			return nil
		},
	}
}

func keywordsCmd() *cli.Command {
	return &cli.Command{
		Name:  "keywords",
		Usage: "Tag a transcript file with footage keywords and export a CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Usage: "Transcript file to tag", Required: true},
			&cli.IntFlag{Name: "limit", Usage: "Maximum keywords", Value: 10},
			&cli.StringFlag{Name: "out", Usage: "CSV output path (default: <file>.csv)"},
			&cli.StringFlag{Name: "config", Usage: "Path to YAML config file"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.Load(cmd.String("config"))
			if err != nil {
				return err
			}
			path := cmd.String("file")
			raw, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			p := &pipeline.Pipeline{Client: newClient(cfg)}
			kws, err := p.TagKeywords(ctx, string(raw), int(cmd.Int("limit")))
			if err != nil {
				return err
			}

			out := cmd.String("out")
			if out == "" {
				out = strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			rec := pipeline.TranscriptRecord{
				ID:       strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
				Text:     string(raw),
				Keywords: kws,
			}
			if err := pipeline.WriteTranscriptCSV(f, []pipeline.TranscriptRecord{rec}); err != nil {
				return err
			}
			fmt.Printf("keywords: %s -> %s\n", strings.Join(kws, ", "), out)
			return nil
		},
	}
}

func newClient(cfg *config.Config) llm.Client {
	return llm.New(llm.Options{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout(),
	})
}

func printSink() refine.Sink {
	return refine.SinkFunc(func(ev models.ProgressEvent) {
		fmt.Printf("[%3d%%] %s\n", ev.Percent, ev.Message)
	})
}

var unsafeFilename = regexp.MustCompile(`[^\w\s-]`)

func topicFilename(topic string) string {
	s := unsafeFilename.ReplaceAllString(topic, "")
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}

// simple CORS middleware for the local frontend
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
