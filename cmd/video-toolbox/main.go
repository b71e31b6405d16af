// Package main provides the CLI entry point for the video toolbox.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	toolbox "github.com/Fr0z3nRebel/video-toolbox"
	"github.com/Fr0z3nRebel/video-toolbox/internal/config"
	"github.com/Fr0z3nRebel/video-toolbox/internal/engine"
	"github.com/Fr0z3nRebel/video-toolbox/internal/logging"
	"github.com/Fr0z3nRebel/video-toolbox/internal/probe"
	"github.com/Fr0z3nRebel/video-toolbox/internal/report"
	"github.com/Fr0z3nRebel/video-toolbox/internal/server"
	"github.com/Fr0z3nRebel/video-toolbox/internal/task"
	"github.com/Fr0z3nRebel/video-toolbox/internal/util"
)

const appVersion = "0.3.0"

// Shared flags.
var (
	inputFlag  string
	outputFlag string
	jsonFlag   bool
)

var rootCmd = &cobra.Command{
	Use:     "video-toolbox",
	Short:   "FFmpeg-backed media tools: frame capture, GIF conversion, audio extraction and splitting",
	Version: appVersion,
	Long: `video-toolbox wraps locally installed ffmpeg/ffprobe binaries behind a
set of focused media tools.

Examples:
  video-toolbox frames -i clips/ -o shots/ --position last
  video-toolbox gif -i demo.mp4 -o out/ --fps 15 --scale 0.5
  video-toolbox extract-audio -i talk.mkv -o out/ --format wav
  video-toolbox split-audio -i mix.mp3 -o parts/ --segment-length 300
  video-toolbox serve`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Emit progress as NDJSON instead of terminal output")

	for _, cmd := range []*cobra.Command{framesCmd, gifCmd, extractAudioCmd, splitAudioCmd} {
		usage := "Input media file"
		if cmd == framesCmd {
			usage = "Input video file or directory"
		}
		cmd.Flags().StringVarP(&inputFlag, "input", "i", "", usage)
		cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory")
		_ = cmd.MarkFlagRequired("input")
		_ = cmd.MarkFlagRequired("output")
		rootCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// newToolbox builds the library entry point from the loaded configuration
// and the selected reporter.
func newToolbox() (*toolbox.Toolbox, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, os.Stderr)

	var rep report.Reporter = report.NewTerminalReporter()
	if jsonFlag {
		rep = report.NewJSONReporter()
	}
	return toolbox.New(toolbox.WithConfig(cfg), toolbox.WithReporter(rep))
}

func resolveOutput(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}
	return abs, util.EnsureDirectory(abs)
}

// Frame extraction.
var (
	framePosition string
	frameFormat   string
	frameQuality  float64
)

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "Extract the first or last frame from videos",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		tb, err := newToolbox()
		if err != nil {
			return err
		}
		defer tb.Close()

		outDir, err := resolveOutput(outputFlag)
		if err != nil {
			return err
		}

		opts := toolbox.DefaultFrameOptions()
		opts.Position = framePosition
		opts.Format = frameFormat
		opts.Quality = frameQuality

		info, err := os.Stat(inputFlag)
		if err != nil {
			return fmt.Errorf("input path does not exist: %s", inputFlag)
		}
		if info.IsDir() {
			_, err = tb.ExtractFramesFromDir(ctx, inputFlag, outDir, opts)
		} else {
			_, err = tb.ExtractFrames(ctx, []string{inputFlag}, outDir, opts)
		}
		return err
	},
}

// GIF conversion.
var (
	gifFPS      int
	gifQuality  int
	gifScale    float64
	gifStart    float64
	gifDuration float64
	gifDither   string
	gifLoop     int
	gifWorkers  int
)

var gifCmd = &cobra.Command{
	Use:   "gif",
	Short: "Convert a video into an animated GIF",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		tb, err := newToolbox()
		if err != nil {
			return err
		}
		defer tb.Close()

		outDir, err := resolveOutput(outputFlag)
		if err != nil {
			return err
		}

		opts := toolbox.GIFOptions{
			FPS:         gifFPS,
			Quality:     gifQuality,
			Scale:       gifScale,
			StartTime:   gifStart,
			MaxDuration: gifDuration,
			Dithering:   gifDither,
			LoopCount:   gifLoop,
			Workers:     gifWorkers,
		}
		_, err = tb.ConvertGIF(ctx, inputFlag, outDir, opts)
		return err
	},
}

// Audio extraction.
var (
	audioFormat    string
	audioQuality   string
	audioExtraArgs string
)

var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio",
	Short: "Extract the audio track of a video",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		tb, err := newToolbox()
		if err != nil {
			return err
		}
		defer tb.Close()

		outDir, err := resolveOutput(outputFlag)
		if err != nil {
			return err
		}

		opts := toolbox.AudioOptions{Format: audioFormat, Quality: audioQuality}
		if audioExtraArgs != "" {
			opts.ExtraArgs, err = shlex.Split(audioExtraArgs)
			if err != nil {
				return fmt.Errorf("invalid --extra-args: %w", err)
			}
		}
		_, err = tb.ExtractAudio(ctx, inputFlag, outDir, opts)
		return err
	},
}

// Audio splitting.
var splitSegmentLength float64

var splitAudioCmd = &cobra.Command{
	Use:   "split-audio",
	Short: "Split an audio file into fixed-length segments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		tb, err := newToolbox()
		if err != nil {
			return err
		}
		defer tb.Close()

		outDir, err := resolveOutput(outputFlag)
		if err != nil {
			return err
		}

		_, err = tb.SplitAudio(ctx, inputFlag, outDir, toolbox.SplitOptions{
			SegmentLength: splitSegmentLength,
		})
		return err
	},
}

// HTTP job server.
var serveOutputDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP job API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, os.Stderr)

		outDir, err := resolveOutput(serveOutputDir)
		if err != nil {
			return err
		}

		session := engine.NewSession(engine.Config{
			FFmpegBin:    cfg.FFmpegBin,
			FFprobeBin:   cfg.FFprobeBin,
			ScratchBase:  cfg.ScratchDir,
			MinFreeSpace: cfg.MinScratchSpace,
		})
		defer session.Close()

		prober := probe.New(cfg.FFprobeBin)
		executor := server.NewPipelineExecutor(session, prober, cfg)
		tm := task.NewManager(cfg, executor)
		tm.Start(ctx)

		router := server.SetupRouter(tm, cfg, outDir)
		srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}

		errCh := make(chan error, 1)
		go func() {
			logging.Info("listening", "port", cfg.Port, "output", outDir)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case <-ctx.Done():
			logging.Info("shutting down")
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	framesCmd.Flags().StringVar(&framePosition, "position", toolbox.DefaultFrameOptions().Position, "Frame to extract (first or last)")
	framesCmd.Flags().StringVar(&frameFormat, "format", toolbox.DefaultFrameOptions().Format, "Image format (png or jpeg)")
	framesCmd.Flags().Float64Var(&frameQuality, "quality", toolbox.DefaultFrameOptions().Quality, "JPEG quality, 0.0-1.0")

	gifDefaults := toolbox.DefaultGIFOptions()
	gifCmd.Flags().IntVar(&gifFPS, "fps", gifDefaults.FPS, "Output frame rate, 1-30")
	gifCmd.Flags().IntVar(&gifQuality, "quality", gifDefaults.Quality, "Palette quality, 1 (best) to 20 (smallest)")
	gifCmd.Flags().Float64Var(&gifScale, "scale", gifDefaults.Scale, "Output scale factor, 0.0-1.0")
	gifCmd.Flags().Float64Var(&gifStart, "start", gifDefaults.StartTime, "Start offset in seconds")
	gifCmd.Flags().Float64Var(&gifDuration, "duration", gifDefaults.MaxDuration, "Maximum GIF duration in seconds")
	gifCmd.Flags().StringVar(&gifDither, "dither", gifDefaults.Dithering, "Dithering algorithm (none, floyd_steinberg, bayer, sierra2, sierra2_4a)")
	gifCmd.Flags().IntVar(&gifLoop, "loop", gifDefaults.LoopCount, "Loop count (0 = forever, -1 = play once)")
	gifCmd.Flags().IntVar(&gifWorkers, "workers", gifDefaults.Workers, "Encoder threads, 2-8")

	audioDefaults := toolbox.DefaultAudioOptions()
	extractAudioCmd.Flags().StringVar(&audioFormat, "format", audioDefaults.Format, "Audio format (mp3 or wav)")
	extractAudioCmd.Flags().StringVar(&audioQuality, "audio-quality", audioDefaults.Quality, "Quality tier (low, medium, high)")
	extractAudioCmd.Flags().StringVar(&audioExtraArgs, "extra-args", "", "Additional encoder arguments, shell-quoted")

	splitAudioCmd.Flags().Float64Var(&splitSegmentLength, "segment-length", 300, "Segment length in seconds")

	serveCmd.Flags().StringVar(&serveOutputDir, "output", "./output", "Directory for job outputs")
}
