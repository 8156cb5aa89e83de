package peakfinder

import (
	"fmt"
)

type runJob struct {
	Position int
	Input    RunInput
}

type runOutcome struct {
	Position int
	Result   RunResult
	Err      error
}

func worker(id int, jobs <-chan runJob, results chan<- runOutcome,
	params PeakParameters, manual ManualPeakTable) {
	for job := range jobs {
		results <- runSafely(id, job, params, manual)
	}
}

func runSafely(id int, job runJob, params PeakParameters, manual ManualPeakTable) (outcome runOutcome) {
	outcome.Position = job.Position
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Errorf("worker %d recovered from panic: %v", id, r)
		}
	}()
	if configuration.Verbosity > 2 {
		logger.Info(fmt.Sprintf("Worker %d processing %s", id, job.Input.Meta.SourceFile), "workers")
	}
	outcome.Result, outcome.Err = analyzeAndObserve(job.Input, params, manual)
	return outcome
}

// ProcessRuns analyses every input and aggregates the successful ones. A
// failing run is logged and skipped. Results keep the order of inputs whatever
// the number of workers.
func ProcessRuns(inputs []RunInput, params PeakParameters, manual ManualPeakTable, numWorkers int) ([]RunResult, *Aggregator) {
	if numWorkers < 1 {
		numWorkers = 1
	}

	outcomes := make([]runOutcome, len(inputs))
	if numWorkers == 1 {
		for i, input := range inputs {
			outcomes[i] = runSafely(0, runJob{Position: i, Input: input}, params, manual)
		}
	} else {
		jobs := make(chan runJob, len(inputs))
		results := make(chan runOutcome, len(inputs))
		for w := 1; w <= numWorkers; w++ {
			go worker(w, jobs, results, params, manual)
		}
		for i, input := range inputs {
			jobs <- runJob{Position: i, Input: input}
		}
		close(jobs)
		for range inputs {
			outcome := <-results
			outcomes[outcome.Position] = outcome
		}
	}

	aggregator := NewAggregator()
	processed := make([]RunResult, 0, len(inputs))
	for i, outcome := range outcomes {
		if outcome.Err != nil {
			errMessage := fmt.Errorf("error processing run %s: %w", inputs[i].Meta.SourceFile, outcome.Err)
			logger.Error(errMessage.Error())
			continue
		}
		processed = append(processed, outcome.Result)
		aggregator.Add(outcome.Result.Records)
	}
	return processed, aggregator
}
