// Package convert turns DOCX bytes into PDF bytes by shelling out to a
// headless LibreOffice. The office process keeps per-user profile state
// that breaks under concurrent invocations, so conversions run one at a
// time behind a mutex.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// ErrConversion marks a failed DOCX to PDF conversion.
var ErrConversion = errors.New("convert: conversion failed")

// Config controls the conversion engine.
type Config struct {
	// Binary is the soffice executable. Default "soffice".
	Binary string
	// Timeout bounds a single conversion. Default 2m.
	Timeout time.Duration
	// Logger receives conversion diagnostics. Default slog.Default().
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Binary == "" {
		c.Binary = "soffice"
	}
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Engine serializes DOCX to PDF conversions.
type Engine struct {
	mu      sync.Mutex
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

// New builds a conversion Engine from cfg.
func New(cfg Config) *Engine {
	cfg.defaults()
	return &Engine{
		binary:  cfg.Binary,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// Convert renders docxData to PDF. The work happens in a private temp
// directory that is removed when the call returns.
func (e *Engine) Convert(ctx context.Context, docxData []byte) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	dir, err := os.MkdirTemp("", "convert-*")
	if err != nil {
		return nil, fmt.Errorf("%w: temp dir: %v", ErrConversion, err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.docx")
	if err := os.WriteFile(in, docxData, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write input: %v", ErrConversion, err)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, e.binary,
		"--headless", "--convert-to", "pdf", "--outdir", dir, in)
	// Isolate the office profile so parallel fillmate instances on one
	// host do not fight over the default one.
	cmd.Args = append(cmd.Args, "-env:UserInstallation=file://"+filepath.Join(dir, "profile"))
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrConversion, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrConversion, e.binary, err, truncate(out, 512))
	}

	pdf, err := os.ReadFile(filepath.Join(dir, "input.pdf"))
	if err != nil {
		return nil, fmt.Errorf("%w: no pdf produced: %s", ErrConversion, truncate(out, 512))
	}

	e.logger.Debug("converted docx to pdf",
		"docx_bytes", len(docxData),
		"pdf_bytes", len(pdf),
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	return pdf, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
