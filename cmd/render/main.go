// Command render writes one layout of a CV document to disk, as HTML or,
// with -pdf, through the same capture and embed pipeline the server uses.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cv-builder/internal/logger"
	"cv-builder/internal/model"
	"cv-builder/internal/render"
	"cv-builder/internal/usecase"
	infra "cv-builder/pkg/infrastructure"

	"go.uber.org/zap"
)

func main() {
	in := flag.String("in", "", "CV JSON file (empty renders the placeholder)")
	tplName := flag.String("template", string(render.Default), "layout id")
	outDir := flag.String("out", filepath.Join("data", "generated"), "output directory")
	asPDF := flag.Bool("pdf", false, "export a PDF instead of HTML")
	format := flag.String("format", "A4", "page format for -pdf (A4 or Letter)")
	chrome := flag.String("chrome", os.Getenv("CHROME_PATH"), "Chrome executable for -pdf")
	flag.Parse()

	log, err := logger.New("info", "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	if err := run(log, *in, *tplName, *outDir, *format, *chrome, *asPDF); err != nil {
		log.Error("render failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(log *zap.Logger, in, tplName, outDir, format, chrome string, asPDF bool) error {
	doc, err := loadDocument(in)
	if err != nil {
		return err
	}
	id, err := render.ParseTemplateID(tplName)
	if err != nil {
		return err
	}
	surface, err := render.Render(doc, id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	if !asPDF {
		out := filepath.Join(outDir, fmt.Sprintf("cv_%s.html", id))
		if err := os.WriteFile(out, []byte(surface.HTML), 0o644); err != nil {
			return err
		}
		log.Info("wrote html", zap.String("path", out), zap.Strings("sections", surface.Sections))
		return nil
	}

	pf, err := usecase.ParsePageFormat(format)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	exp := usecase.NewExporter(infra.NewChromedpCapturer(chrome, time.Minute), nil, log, nil, usecase.MinScale)
	res, err := exp.Export(ctx, usecase.ExportRequest{
		UserID:    "cli",
		OwnerName: doc.PersonalInfo.Name,
		Surface:   surface,
		Format:    pf,
	})
	if err != nil {
		return err
	}
	out := filepath.Join(outDir, res.FileName)
	if err := os.WriteFile(out, res.PDF, 0o644); err != nil {
		return err
	}
	log.Info("wrote pdf",
		zap.String("path", out),
		zap.Int("width_px", res.WidthPx),
		zap.Int("height_px", res.HeightPx),
		zap.Strings("warnings", res.Warnings),
	)
	return nil
}

func loadDocument(path string) (*model.Resume, error) {
	if path == "" {
		return model.Placeholder(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := model.ValidateJSON(b); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var doc model.Resume
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	doc.Normalize()
	return &doc, nil
}
