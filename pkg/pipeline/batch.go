package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/observability"

	"github.com/xaionaro-go/speechprep/pkg/audio"
)

// OutputName returns the output file name of an input: the first two
// "_"-separated parts of its stem followed by "_cleaned.wav".
func OutputName(inputPath string) string {
	stem := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	parts := strings.Split(stem, "_")
	return strings.Join(parts[:min(2, len(parts))], "_") + "_cleaned.wav"
}

// ListInputs returns the regular files of dir matching cfg.Pattern, sorted by
// name and limited to cfg.Limit entries.
func ListInputs(dir string, cfg BatchConfig) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to read the directory '%s': %v", audio.ErrIO, dir, err)
	}

	var result []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ok, err := filepath.Match(cfg.Pattern, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", cfg.Pattern, err)
		}
		if !ok {
			continue
		}
		result = append(result, filepath.Join(dir, entry.Name()))
		if cfg.Limit > 0 && len(result) >= cfg.Limit {
			break
		}
	}
	return result, nil
}

type FileResult struct {
	Input  string
	Output string
	Report *FileReport
	Err    error
}

type BatchReport struct {
	RunID   string
	Results []FileResult
}

func (r *BatchReport) Succeeded() []FileResult {
	var result []FileResult
	for _, item := range r.Results {
		if item.Err == nil {
			result = append(result, item)
		}
	}
	return result
}

func (r *BatchReport) Failed() []FileResult {
	var result []FileResult
	for _, item := range r.Results {
		if item.Err != nil {
			result = append(result, item)
		}
	}
	return result
}

// Err returns all the per-file failures combined, or nil.
func (r *BatchReport) Err() error {
	var mErr *multierror.Error
	for _, item := range r.Failed() {
		mErr = multierror.Append(mErr, fmt.Errorf("'%s': %w", item.Input, item.Err))
	}
	return mErr.ErrorOrNil()
}

// ProcessDir processes the matching files of inputDir into outputDir.
//
// A failure of a single file is logged and recorded in the report, the
// other files are still processed. The returned error is only about the
// batch as a whole (bad directories, cancellation).
func (p *Pipeline) ProcessDir(
	ctx context.Context,
	inputDir string,
	outputDir string,
) (_ret *BatchReport, _err error) {
	logger.Tracef(ctx, "ProcessDir(ctx, '%s', '%s')", inputDir, outputDir)
	defer func() { logger.Tracef(ctx, "/ProcessDir(ctx, '%s', '%s'): %v", inputDir, outputDir, _err) }()

	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: input directory '%s' does not exist", audio.ErrInvalidInput, inputDir)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: unable to create the output directory '%s': %v", audio.ErrIO, outputDir, err)
	}

	inputs, err := ListInputs(inputDir, p.Config.Batch)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{
		RunID:   uuid.New().String(),
		Results: make([]FileResult, len(inputs)),
	}
	ctx = logger.CtxWithLogger(ctx, logger.FromCtx(ctx).WithField("run_id", report.RunID))
	logger.Infof(ctx, "processing %d files from '%s' into '%s'", len(inputs), inputDir, outputDir)

	producedBy := map[string]string{}
	for idx, input := range inputs {
		output := filepath.Join(outputDir, OutputName(input))
		report.Results[idx] = FileResult{Input: input, Output: output}
		if prev, ok := producedBy[output]; ok {
			report.Results[idx].Err = fmt.Errorf("output '%s' collides with the output of '%s'", output, prev)
			continue
		}
		producedBy[output] = input
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < p.Config.Batch.Concurrency; i++ {
		wg.Add(1)
		observability.Go(ctx, func() {
			defer wg.Done()
			for idx := range jobs {
				p.processBatchItem(ctx, &report.Results[idx])
			}
		})
	}

	for idx := range report.Results {
		item := &report.Results[idx]
		if item.Err != nil {
			logger.Errorf(ctx, "skipping '%s': %v", item.Input, item.Err)
			continue
		}
		if ctx.Err() != nil {
			item.Err = fmt.Errorf("not processed: %w", ctx.Err())
			continue
		}
		select {
		case <-ctx.Done():
			item.Err = fmt.Errorf("not processed: %w", ctx.Err())
		case jobs <- idx:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("the batch was interrupted: %w", err)
	}

	logger.Infof(ctx, "processed %d files, %d failed", len(report.Succeeded()), len(report.Failed()))
	return report, nil
}

func (p *Pipeline) processBatchItem(ctx context.Context, item *FileResult) {
	ctx = logger.CtxWithLogger(ctx, logger.FromCtx(ctx).WithField("file", filepath.Base(item.Input)))
	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	logger.Infof(ctx, "processing '%s'", item.Input)
	item.Report, item.Err = p.ProcessFile(ctx, item.Input, item.Output)
	if item.Err != nil {
		logger.Errorf(ctx, "unable to process '%s': %v", item.Input, item.Err)
		return
	}
	logger.Infof(ctx, "saved the cleaned file to '%s'", item.Output)
}
