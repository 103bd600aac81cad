package transfer

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"transfers/internal/models"
	"transfers/pkg/logger"
	"transfers/pkg/utils"
)

type folderJob struct {
	bucket string
	folder models.Folder
}

type folderResult struct {
	name    string
	archive []byte
	fetched int
	missing []string
}

// Download fetches every file the manifest names and bundles each folder into
// its own ZIP inside one outer ZIP. Files that cannot be fetched are recorded
// as "{key} from {bucket}" and never abort the batch. Only context
// cancellation returns an error.
func (s *Service) Download(ctx context.Context, manifest models.DownloadManifest) (models.DownloadOutcome, error) {
	began := time.Now()
	defer func() {
		s.metrics.DownloadDuration.Observe(time.Since(began).Seconds())
	}()
	start := s.now()
	log := logger.Ctx(ctx)

	var jobs []folderJob
	for _, b := range manifest.Buckets {
		for _, f := range b.Folders {
			jobs = append(jobs, folderJob{bucket: b.Bucket, folder: f})
		}
	}

	results := make([]folderResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, job := range jobs {
		g.Go(func() error {
			res, err := s.fetchFolder(gctx, job, start)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.DownloadOutcome{}, fmt.Errorf("download aborted: %w", err)
	}

	outer := utils.NewStoredArchiveBuilder(start)
	fetched := 0
	var missing []string
	for _, res := range results {
		missing = append(missing, res.missing...)
		if res.fetched == 0 {
			continue
		}
		fetched += res.fetched
		if outer.Add(res.name+".zip", res.archive) {
			log.Warn().Str("folder", res.name).Msg("duplicate folder name, later entry replaces earlier")
		}
	}

	s.metrics.FilesFetched.Add(float64(fetched))
	s.metrics.FilesMissing.Add(float64(len(missing)))

	if fetched == 0 {
		log.Warn().Int("missing", len(missing)).Msg("no files found to download")
		s.metrics.Downloads.WithLabelValues(models.OutcomeEmpty.String()).Inc()
		return models.EmptyOutcome(missing), nil
	}

	archive, err := outer.Bytes()
	if err != nil {
		return models.DownloadOutcome{}, err
	}
	name := utils.GenerateArchiveName(start)

	if len(missing) > 0 {
		log.Warn().
			Int("fetched", fetched).
			Strs("missing", missing).
			Msg("download is missing files")
		s.metrics.Downloads.WithLabelValues(models.OutcomePartial.String()).Inc()
		return models.PartialOutcome(archive, name, fetched, missing), nil
	}

	log.Info().
		Int("fetched", fetched).
		Int("archive_size", len(archive)).
		Msg("download bundled")
	s.metrics.Downloads.WithLabelValues(models.OutcomeComplete.String()).Inc()
	return models.CompleteOutcome(archive, name, fetched), nil
}

// fetchFolder reads a folder's files sequentially, in manifest order.
func (s *Service) fetchFolder(ctx context.Context, job folderJob, modified time.Time) (folderResult, error) {
	log := logger.Ctx(ctx)
	res := folderResult{name: job.folder.Name}
	inner := utils.NewArchiveBuilder(modified)

	for _, file := range job.folder.Files {
		if err := ctx.Err(); err != nil {
			return folderResult{}, err
		}

		data, err := s.store.Get(ctx, job.bucket, file.Key)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return folderResult{}, ctxErr
			}
			log.Error().Err(err).
				Str("bucket", job.bucket).
				Str("key", file.Key).
				Msg("failed to download file")
			res.missing = append(res.missing, fmt.Sprintf("%s from %s", file.Key, job.bucket))
			continue
		}

		if inner.Add(file.FileName, data) {
			log.Warn().
				Str("folder", job.folder.Name).
				Str("file_name", file.FileName).
				Msg("duplicate file name, later entry replaces earlier")
		}
		res.fetched++
	}

	if res.fetched == 0 {
		return res, nil
	}
	archive, err := inner.Bytes()
	if err != nil {
		return folderResult{}, err
	}
	res.archive = archive
	return res, nil
}
