package batch

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/adventure-scaler/scaler/internal/adventure"
)

// Run executes tasks one after another and stops at the first failure.
// Results of the jobs completed before the failure are returned with it.
func Run(ctx context.Context, tasks []Task, log logrus.FieldLogger) ([]*adventure.Result, error) {
	results := make([]*adventure.Result, 0, len(tasks))
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		jobLog := log.WithField("job", i+1)
		scaler := adventure.NewScaler(task.Options, jobLog)
		result, err := scaler.PerformScaling(ctx, task.Input, task.Output, task.Scale)
		if err != nil {
			return results, fmt.Errorf("job %d (%s): %w", i+1, task.Input, err)
		}
		results = append(results, result)
	}
	return results, nil
}
