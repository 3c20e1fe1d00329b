// Package pdfscan flags uploaded PDFs that contain active or multimedia content.
package pdfscan

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the number of documents scanned at once.
const DefaultWorkers = 3

// ErrNoQueue is returned when resuming without a queue file.
var ErrNoQueue = errors.New("resume requested but no queue file found")

// Options holds configuration for ScanAll
type Options struct {
	Bucket    string
	Framework string
	// Resume continues a previous run from this queue position when set.
	Resume    *int
	QueuePath string
	Workers   int
	// LogEvery logs progress every n documents.
	LogEvery int
	Now      func() time.Time
	Logger   *zap.Logger
}

// Summary counts scan outcomes.
type Summary struct {
	Scanned int
	Counts  map[string]int
	Unusual []string
}

// DocumentsPrefix is where a framework's supplier documents live.
func DocumentsPrefix(framework string) string {
	return path.Join(framework, "documents")
}

// ScanAll scans every PDF for the framework and appends a row per document to
// report. Failures to fetch or scan a document become MessageError rows.
func ScanAll(ctx context.Context, store ObjectStore, scanner Scanner, report *Report, opts Options) (*Summary, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	queuePath := opts.QueuePath
	if queuePath == "" {
		queuePath = DefaultQueuePath
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	logEvery := opts.LogEvery
	if logEvery <= 0 {
		logEvery = 10
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var objects []Object
	if opts.Resume != nil {
		if _, err := os.Stat(queuePath); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrNoQueue, queuePath)
		}
		logger.Info("Resuming from previous run", zap.String("queue", queuePath), zap.Int("index", *opts.Resume))
		all, err := LoadQueue(queuePath)
		if err != nil {
			return nil, err
		}
		start := min(max(*opts.Resume, 0), len(all))
		objects = all[start:]
	} else {
		listed, err := store.ListPDFs(ctx, opts.Bucket, DocumentsPrefix(opts.Framework))
		if err != nil {
			return nil, err
		}
		objects = listed
		logger.Info("Writing PDFs to scan", zap.String("queue", queuePath))
		if err := SaveQueue(queuePath, objects); err != nil {
			return nil, err
		}
	}
	logger.Info("Scanning files", zap.Int("count", len(objects)))

	results := make([]Result, len(objects))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, obj := range objects {
		i, obj := i, obj // per-iteration copies (go 1.21 loop semantics)
		g.Go(func() error {
			if i%logEvery == 0 {
				logger.Info("Scanning file", zap.Int("index", i))
			}
			res := scanOne(gCtx, store, scanner, obj, opts.Framework, logger)
			res.ScannedAt = now().Format("2006-01-02 15:04:05.000000")
			results[i] = res
			return report.Append(res)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info("Finished scanning, removing queue file")
	if err := os.Remove(queuePath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove queue file: %w", err)
	}

	summary := &Summary{Scanned: len(results), Counts: make(map[string]int)}
	for _, r := range results {
		summary.Counts[r.Message]++
		if r.Message == MessageUnusual {
			summary.Unusual = append(summary.Unusual, r.Key)
		}
	}
	return summary, nil
}

func scanOne(ctx context.Context, store ObjectStore, scanner Scanner, obj Object, framework string, logger *zap.Logger) Result {
	res := Result{Bucket: obj.Bucket, Framework: framework, Key: obj.Key, Message: MessageError}

	data, err := store.Fetch(ctx, obj)
	if err != nil {
		logger.Warn("Failed to fetch document", zap.String("key", obj.Key), zap.Error(err))
		return res
	}

	code, message, err := scanner.Scan(ctx, path.Base(obj.Key), data)
	res.StatusCode = code
	res.Message = message
	if err != nil {
		logger.Warn("Failed to scan document", zap.String("key", obj.Key), zap.Error(err))
		res.Message = MessageError
	}
	return res
}
