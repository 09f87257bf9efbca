package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/resumatch/internal/app"
	"github.com/kailas-cloud/resumatch/internal/domain/document"
)

type analyzeOptions struct {
	resume string
	jdFile string
	jdText string
	asJSON bool
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score a resume file against a job description",
		Example: `  resumatch analyze --resume cv.pdf --jd job.txt
  resumatch analyze --resume cv.docx --jd-text "Go developer with Kubernetes" --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jd, err := opts.jobDescription()
			if err != nil {
				return err
			}

			data, err := os.ReadFile(filepath.Clean(opts.resume))
			if err != nil {
				return fmt.Errorf("read resume: %w", err)
			}
			doc, err := document.FromFile(filepath.Base(opts.resume), data)
			if err != nil {
				return err //nolint:wrapcheck // message already names the file
			}

			cfg, logger, _, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("build app: %w", err)
			}
			defer a.Close()

			res, err := a.Analysis.Analyze(cmd.Context(), doc, jd)
			if err != nil {
				return err //nolint:wrapcheck // already prefixed by the pipeline
			}

			if opts.asJSON {
				return renderJSON(cmd.OutOrStdout(), res)
			}
			return renderText(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&opts.resume, "resume", "r", "", "resume file (.pdf or .docx)")
	cmd.Flags().StringVar(&opts.jdFile, "jd", "", "file with the job description text")
	cmd.Flags().StringVar(&opts.jdText, "jd-text", "", "job description text")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the result as JSON")
	_ = cmd.MarkFlagRequired("resume")
	cmd.MarkFlagsMutuallyExclusive("jd", "jd-text")

	return cmd
}

// jobDescription returns the JD from --jd-text or the --jd file. An empty JD is valid.
func (o *analyzeOptions) jobDescription() (string, error) {
	if o.jdFile == "" {
		return o.jdText, nil
	}
	data, err := os.ReadFile(filepath.Clean(o.jdFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("job description file %q not found", o.jdFile)
		}
		return "", fmt.Errorf("read job description: %w", err)
	}
	return string(data), nil
}
