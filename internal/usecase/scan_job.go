package usecase

import (
	"context"
	"fmt"

	"QuantSift/pkg/logger"
	"QuantSift/pkg/queue"
)

const ScanMessageType = "scan.requested"

// ScanPayload is the queue message body for an asynchronous scan request.
type ScanPayload struct {
	Universe []string `json:"universe,omitempty"`
	DryRun   bool     `json:"dry_run,omitempty"`
}

// ScanJob consumes scan requests from the queue, runs the pipeline and
// records the resulting artifact.
type ScanJob struct {
	pipeline *ScanPipeline
	recorder *RunRecorder
	universe []string
	log      *logger.Logger
}

func NewScanJob(pipeline *ScanPipeline, recorder *RunRecorder, defaultUniverse []string, log *logger.Logger) *ScanJob {
	return &ScanJob{pipeline: pipeline, recorder: recorder, universe: defaultUniverse, log: log}
}

func (j *ScanJob) Name() string { return "scan_job" }

func (j *ScanJob) Type() string { return ScanMessageType }

func (j *ScanJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[ScanPayload](payload)
	if err != nil {
		return fmt.Errorf("scan job payload: %w", err)
	}

	universe := req.Universe
	if len(universe) == 0 {
		universe = j.universe
	}

	artifact, err := j.pipeline.Run(ctx, universe)
	if err != nil {
		return err
	}
	if req.DryRun {
		artifact.DryRun = true
	}
	return j.recorder.Record(ctx, artifact)
}
