package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"catalog-service/app"
	"catalog-service/config"
	"catalog-service/models"
	aws_pkg "catalog-service/pkg/aws"
	"catalog-service/pkg/logger"
	"catalog-service/services"

	"go.uber.org/zap"
)

func main() {
	var imagesDir string
	var dryRun bool
	var workers int
	flag.StringVar(&imagesDir, "images", "", "directory of product images to match against rows")
	flag.BoolVar(&dryRun, "dry-run", false, "validate rows without writing products or uploading images")
	flag.IntVar(&workers, "workers", 0, "rows processed concurrently (defaults to IMPORT_WORKERS)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: catalog-import [flags] <file-or-dir>...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if workers > 0 {
		cfg.Import.Workers = workers
	}
	logger.Initialize(cfg.Env)
	zlog := logger.Log
	defer zlog.Sync()

	sources, err := readSources(flag.Args())
	if err != nil {
		log.Fatalf("read sources: %v", err)
	}
	var images []models.UploadedImage
	if imagesDir != "" {
		if images, err = readImages(imagesDir); err != nil {
			log.Fatalf("read images: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}
	stores, closeStores, err := app.OpenStores(ctx, cfg, awsCfg, zlog)
	if err != nil {
		log.Fatalf("open %s store: %v", cfg.StoreDriver, err)
	}
	defer closeStores()

	importer := app.NewImportService(cfg, awsCfg, stores, zlog)
	outcome, err := importer.Run(ctx, sources, images, services.ImportOptions{
		DryRun: dryRun,
		Progress: func(p models.ImportProgress) {
			if p.Stage != services.StageRows || p.Current == p.Total || p.Current%100 == 0 {
				zlog.Info("Import progress", zap.String("stage", p.Stage), zap.Int("current", p.Current), zap.Int("total", p.Total))
			}
		},
	})
	if err != nil {
		zlog.Error("Import aborted", zap.Error(err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome); err != nil {
		log.Fatalf("encode report: %v", err)
	}
	if outcome.SuccessCount == 0 && outcome.TotalRows > 0 {
		os.Exit(1)
	}
}

// readSources expands directories to the spreadsheets they hold, in name order.
func readSources(args []string) ([]models.ImportSource, error) {
	var sources []models.ImportSource
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		paths := []string{arg}
		if info.IsDir() {
			if paths, err = listFiles(arg, spreadsheetExt); err != nil {
				return nil, err
			}
		}
		for _, p := range paths {
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, err
			}
			sources = append(sources, models.ImportSource{FileName: filepath.Base(p), Data: data})
		}
	}
	return sources, nil
}

func readImages(dir string) ([]models.UploadedImage, error) {
	paths, err := listFiles(dir, imageExt)
	if err != nil {
		return nil, err
	}
	images := make([]models.UploadedImage, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		images = append(images, models.UploadedImage{FileName: filepath.Base(p), Data: data})
	}
	return images, nil
}

func listFiles(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !keep(strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func spreadsheetExt(ext string) bool {
	switch ext {
	case ".csv", ".txt", ".xlsx", ".xlsm":
		return true
	}
	return false
}

func imageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}
