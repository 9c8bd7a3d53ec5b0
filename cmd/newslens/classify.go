package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/newslens/internal/domain"
	"github.com/phrazzld/newslens/internal/service"
	"github.com/phrazzld/newslens/internal/task"
	"github.com/spf13/cobra"
)

// errTaskFailed makes the command exit non-zero when the task ends Failed.
var errTaskFailed = errors.New("classification task failed")

const defaultPollInterval = 200 * time.Millisecond

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	var pairs []string

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Run one classification task in-process and print the result",
		Example: `  newslens classify --pair "хорошая новость/плохая новость"
  newslens classify --pair positive/negative --pair local/international`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parsePairs(pairs)
			if err != nil {
				return err
			}

			cfg, log, err := loadConfigAndLogger(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx := contextOrBackground(cmd.Context())
			app, err := newApplication(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout())
				defer cancel()
				_ = app.shutdown(stopCtx)
			}()

			return runClassification(ctx, app.taskService, req, defaultPollInterval, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "pair", nil, `category pair as "class1/class2" (repeatable)`)
	_ = cmd.MarkFlagRequired("pair")
	return cmd
}

// parsePairs turns "class1/class2" flag values into a request. Only the
// first slash separates the classes.
func parsePairs(values []string) (domain.ClassificationRequest, error) {
	pairs := make([]domain.CategoryPair, 0, len(values))
	for _, v := range values {
		c1, c2, ok := strings.Cut(v, "/")
		if !ok {
			return domain.ClassificationRequest{}, fmt.Errorf("invalid pair %q: expected class1/class2", v)
		}
		pairs = append(pairs, domain.CategoryPair{Class1: c1, Class2: c2})
	}
	return domain.NewClassificationRequest(pairs)
}

// runClassification submits req, polls until the task is terminal and
// writes the record to out as indented JSON.
func runClassification(
	ctx context.Context,
	svc service.TaskService,
	req domain.ClassificationRequest,
	pollInterval time.Duration,
	out io.Writer,
) error {
	id, err := svc.CreateTask(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	rec, err := waitForTask(ctx, svc, id, pollInterval)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}

	if rec.Status == task.StatusFailed {
		return fmt.Errorf("%w: %s", errTaskFailed, *rec.Error)
	}
	return nil
}

func waitForTask(ctx context.Context, svc service.TaskService, id uuid.UUID, pollInterval time.Duration) (*task.Record, error) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		rec, err := svc.GetStatus(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get task status: %w", err)
		}
		if rec.Status.IsTerminal() {
			return rec, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
