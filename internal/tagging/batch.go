package tagging

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Aftnet/NetMediaInfoLib/internal/log"
	"github.com/Aftnet/NetMediaInfoLib/internal/media"
	csmap "github.com/mhmtszr/concurrent-swiss-map"
)

// ErrDuplicateJob is returned when two jobs of one batch target the same
// file.
var ErrDuplicateJob = errors.New("file appears in more than one job")

// Job tags one file with either a movie or an episode.
type Job struct {
	Path    string
	Movie   *media.Movie
	Episode *media.TVEpisode
}

// Subject describes the payload for reports.
func (j Job) Subject() string {
	switch {
	case j.Movie != nil:
		return j.Movie.Title
	case j.Episode != nil:
		if show := j.Episode.Show(); show != nil {
			return fmt.Sprintf("%s S%02dE%02d", show.Title, j.Episode.Season.Number, j.Episode.Number)
		}
		return j.Episode.Title
	default:
		return ""
	}
}

func (j Job) operation() log.OperationType {
	if j.Episode != nil {
		return log.OpTagEpisode
	}
	return log.OpTagMovie
}

// Result is the outcome of one Job.
type Result struct {
	Job Job
	Err error
}

// OK reports whether the job's file was tagged.
func (r Result) OK() bool {
	return r.Err == nil
}

// Batch tags many files in parallel. Each file is handled by exactly one
// worker.
type Batch struct {
	Tagger  *Tagger
	Workers int
}

// Run tags every job and returns the results in job order. Jobs not started
// before ctx is cancelled fail with the context error.
func (b *Batch) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	seen := make(map[string]struct{}, len(jobs))
	for _, job := range jobs {
		if _, dup := seen[job.Path]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateJob, job.Path)
		}
		seen[job.Path] = struct{}{}
	}
	if len(jobs) == 0 {
		return []Result{}, nil
	}

	results := csmap.Create[string, Result]()
	workerCount := min(max(b.Workers, 1), len(jobs))
	workCh := make(chan Job)
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go b.worker(ctx, &wg, workCh, results)
	}

	go func() {
		defer close(workCh)
		for _, job := range jobs {
			select {
			case workCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	ordered := make([]Result, 0, len(jobs))
	for _, job := range jobs {
		res, ok := results.Load(job.Path)
		if !ok {
			res = Result{Job: job, Err: ctx.Err()}
		}
		ordered = append(ordered, res)
	}
	return ordered, nil
}

func (b *Batch) worker(ctx context.Context, wg *sync.WaitGroup, workCh <-chan Job, results *csmap.CsMap[string, Result]) {
	defer wg.Done()

	for job := range workCh {
		if ctx.Err() != nil {
			return
		}
		res := Result{Job: job, Err: b.tag(job)}
		log.LogTag(job.operation(), job.Path, formatName(job.Path), job.Subject(), res.OK(), res.Err)
		results.Store(job.Path, res)
	}
}

func (b *Batch) tag(job Job) error {
	switch {
	case job.Movie != nil && job.Episode != nil:
		return &TagError{Kind: ErrPayload, Path: job.Path, Err: errors.New("job has both a movie and an episode")}
	case job.Episode != nil:
		return b.Tagger.TagEpisodeErr(job.Episode, job.Path)
	default:
		return b.Tagger.TagMovieErr(job.Movie, job.Path)
	}
}

func formatName(path string) string {
	if f, ok := FormatFor(path); ok {
		return f.String()
	}
	return ""
}
