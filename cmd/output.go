package main

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/xhad/fileseed/internal/types"
	"github.com/xhad/fileseed/pkg/seeder"
)

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func printReport(report *seeder.Report) {
	color.Green("✓ Cleared %d documents\n", report.Deleted)
	color.Green("✓ Upserted %d files (%d inserted, %d updated) in %s\n",
		len(report.Results), report.Inserted, report.Updated, report.Elapsed.Round(time.Millisecond))
}

// inspect prints the metadata collection and the binary bucket.
func inspect(ctx context.Context, s types.MetadataStore, config Config) error {
	count, err := s.Count(ctx)
	if err != nil {
		return err
	}
	color.Cyan("\nTotal uploaded files: %d\n", count)

	records, err := s.List(ctx)
	if err != nil {
		return err
	}
	for _, rec := range records {
		fmt.Printf("%s | type: %s | uploaded: %s\n",
			rec.Filename, rec.FileType, rec.UploadedAt.Format(time.RFC3339))
	}

	files, err := s.ListBinaries(ctx)
	if err != nil {
		return err
	}
	color.Cyan("\nStored binaries in %s: %d\n", config.Bucket, len(files))
	for _, f := range files {
		fmt.Printf("%s | size: %d | uploaded: %s\n",
			f.Filename, f.Length, f.UploadDate.Format(time.RFC3339))
	}

	return nil
}

// warn reports a non-fatal error from a side concern such as the progress
// bar or closing the store.
func warn(what string, err error) {
	if err != nil {
		color.Yellow("warning: %s: %v\n", what, err)
	}
}
