// internal/common/camunda/job.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"grant-workers/internal/common/errors"
	"grant-workers/internal/common/logger"
	"grant-workers/internal/common/validation"
)

// DecodeJob validates the job variables against schema, when one is given,
// and unmarshals them into out. Failures are non-retryable input errors.
func DecodeJob(job entities.Job, schema *validation.Schema, out interface{}) error {
	if job.ActivatedJob == nil {
		return errors.NewInvalidInputError("job has no variables")
	}

	if schema != nil {
		variables, err := job.GetVariablesAsMap()
		if err != nil {
			return errors.NewInvalidInputError(fmt.Sprintf("parse variables: %v", err))
		}
		if result := schema.ValidateInput(variables); !result.Valid {
			return errors.NewValidationFailedError(result.Summary())
		}
	}

	if err := json.Unmarshal([]byte(job.Variables), out); err != nil {
		return errors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
	}
	return nil
}

// CompleteJob completes the job with output as its variables. The command is
// sent on errors.ReportContext, outside the deadline of ctx.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}, log logger.Logger) error {
	ctx, cancel := errors.ReportContext(ctx)
	defer cancel()

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		log.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		log.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return err
	}
	return nil
}
