package server

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/shlex"

	"github.com/Fr0z3nRebel/video-toolbox/internal/archive"
	"github.com/Fr0z3nRebel/video-toolbox/internal/config"
	"github.com/Fr0z3nRebel/video-toolbox/internal/logging"
	"github.com/Fr0z3nRebel/video-toolbox/internal/pipeline"
	"github.com/Fr0z3nRebel/video-toolbox/internal/task"
)

// Handler serves the job API.
type Handler struct {
	taskManager *task.Manager
	cfg         *config.Config
	guard       *resourceGuard
	outDir      string
}

// NewHandler creates a Handler writing outputs under outDir.
func NewHandler(tm *task.Manager, cfg *config.Config, outDir string) *Handler {
	return &Handler{
		taskManager: tm,
		cfg:         cfg,
		guard:       &resourceGuard{cfg: cfg, outDir: outDir},
		outDir:      outDir,
	}
}

// JobRequest is the job submission payload. Input is a local path or an
// http(s) URL; per-tool options ride in the matching field.
type JobRequest struct {
	Tool      string                 `json:"tool" binding:"required"`
	Input     string                 `json:"input" binding:"required"`
	Frame     *pipeline.FrameOptions `json:"frame,omitempty"`
	GIF       *pipeline.GIFOptions   `json:"gif,omitempty"`
	Split     *pipeline.SplitOptions `json:"split,omitempty"`
	Audio     *pipeline.AudioOptions `json:"audio,omitempty"`
	ExtraArgs string                 `json:"extraArgs,omitempty"`
}

// parseExtraArgs tokenizes and validates user-supplied encoder arguments
// without involving a shell. Input/output selection and path-like tokens
// are rejected.
func parseExtraArgs(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	tokens, err := shlex.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid argument syntax: %w", err)
	}
	for _, tok := range tokens {
		switch {
		case tok == "-i" || tok == "-y" || tok == "-passlogfile":
			return nil, fmt.Errorf("argument %q is not allowed", tok)
		case strings.ContainsAny(tok, "/\\") || strings.Contains(tok, ".."):
			return nil, fmt.Errorf("path-like argument %q is not allowed", tok)
		}
	}
	return tokens, nil
}

// handleCreateJob validates and enqueues a new job.
func (h *Handler) handleCreateJob(c *gin.Context) {
	var req JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Tool {
	case ToolFrames, ToolGIF, ToolExtractAudio, ToolSplitAudio:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown tool %q", req.Tool)})
		return
	}

	if err := h.guard.check(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	extraArgs, err := parseExtraArgs(req.ExtraArgs)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(extraArgs) > 0 {
		if req.Tool != ToolExtractAudio {
			c.JSON(http.StatusBadRequest, gin.H{"error": "extraArgs is only supported for extract-audio"})
			return
		}
		audio := pipeline.DefaultAudioOptions()
		if req.Audio != nil {
			audio = *req.Audio
		}
		audio.ExtraArgs = extraArgs
		req.Audio = &audio
	}

	inputPath, err := h.resolveInput(c, req.Input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t := h.taskManager.Submit(req.Tool, inputPath, h.outDir, task.Options{
		Frame: req.Frame,
		GIF:   req.GIF,
		Split: req.Split,
		Audio: req.Audio,
	})
	c.JSON(http.StatusAccepted, gin.H{"jobId": t.ID})
}

// resolveInput accepts a local path or downloads an http(s) URL into the
// scratch dir, capped at the configured input size.
func (h *Handler) resolveInput(c *gin.Context, input string) (string, error) {
	u, err := url.Parse(input)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return h.downloadInput(c, u)
	}

	info, err := os.Stat(input)
	if err != nil {
		return "", fmt.Errorf("input file not found: %s", input)
	}
	if info.Size() > h.cfg.MaxInputSize {
		return "", fmt.Errorf("input exceeds the %d byte limit", h.cfg.MaxInputSize)
	}
	return input, nil
}

func (h *Handler) downloadInput(c *gin.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching input: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching input: status %d", resp.StatusCode)
	}
	if resp.ContentLength > h.cfg.MaxInputSize {
		return "", fmt.Errorf("input exceeds the %d byte limit", h.cfg.MaxInputSize)
	}

	name := filepath.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "input"
	}
	dest, err := os.CreateTemp(h.cfg.ScratchDir, "download_*_"+name)
	if err != nil {
		return "", err
	}
	defer dest.Close()

	limited := io.LimitReader(resp.Body, h.cfg.MaxInputSize+1)
	n, err := io.Copy(dest, limited)
	if err != nil {
		os.Remove(dest.Name())
		return "", fmt.Errorf("saving input: %w", err)
	}
	if n > h.cfg.MaxInputSize {
		os.Remove(dest.Name())
		return "", fmt.Errorf("input exceeds the %d byte limit", h.cfg.MaxInputSize)
	}
	return dest.Name(), nil
}

// handleListJobs lists all jobs.
func (h *Handler) handleListJobs(c *gin.Context) {
	tasks := h.taskManager.List()
	snapshots := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		snapshots = append(snapshots, t.Snapshot())
	}
	c.JSON(http.StatusOK, snapshots)
}

// handleGetJob returns one job's status with download URLs for completed
// artifacts.
func (h *Handler) handleGetJob(c *gin.Context) {
	t, found := h.taskManager.Get(c.Param("jobId"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	snap := t.Snapshot()
	resp := gin.H{"job": snap}
	if snap.Status == task.StatusCompleted && len(snap.Artifacts) > 0 {
		urls := make([]string, 0, len(snap.Artifacts))
		for _, a := range snap.Artifacts {
			urls = append(urls, h.downloadURL(c, a.Name))
		}
		resp["downloadUrls"] = urls
		resp["archiveUrl"] = fmt.Sprintf("%s/api/v1/jobs/%s/archive", h.baseURL(c), snap.ID)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) baseURL(c *gin.Context) string {
	baseURL := h.cfg.BaseURL
	if baseURL == "" {
		scheme := "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s", scheme, c.Request.Host)
	}
	return strings.TrimSuffix(baseURL, "/")
}

func (h *Handler) downloadURL(c *gin.Context, filename string) string {
	return fmt.Sprintf("%s/api/v1/files/%s", h.baseURL(c), filename)
}

// handleCancelJob requests cancellation of a job.
func (h *Handler) handleCancelJob(c *gin.Context) {
	if err := h.taskManager.Cancel(c.Param("jobId")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "job cancellation requested"})
}

// handleGetFile serves one output file.
func (h *Handler) handleGetFile(c *gin.Context) {
	filePath, err := h.taskManager.OutputFilePath(h.outDir, c.Param("filename"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.File(filePath)
}

// handleGetArchive bundles a completed job's artifacts into one ZIP.
func (h *Handler) handleGetArchive(c *gin.Context) {
	t, found := h.taskManager.Get(c.Param("jobId"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	snap := t.Snapshot()
	if snap.Status != task.StatusCompleted || len(snap.Artifacts) == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "job has no completed artifacts"})
		return
	}

	entries := make([]archive.Entry, 0, len(snap.Artifacts))
	for _, a := range snap.Artifacts {
		entries = append(entries, archive.Entry{Name: a.Name, Path: a.Path})
	}

	zipPath := filepath.Join(h.outDir, snap.ID+".zip")
	if _, err := os.Stat(zipPath); err != nil {
		if err := archive.Create(zipPath, entries, nil); err != nil {
			logging.Warn("archive creation failed", "job", snap.ID, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "archive creation failed"})
			return
		}
	}
	c.FileAttachment(zipPath, snap.ID+".zip")
}
