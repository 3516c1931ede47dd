package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/podbridge/podbridge/internal/formatter"
	"github.com/podbridge/podbridge/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk agent exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: podbridge_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Requests per second (default: 5)
}

// BulkExport exports multiple agents concurrently with rate limiting and progress tracking.
//
// This method implements a worker pool pattern to efficiently export multiple agents.
// It respects API rate limits, handles partial failures gracefully, and generates a manifest file summarizing the export results.
func (e *ExportEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("podbridge_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalAgents:     len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]AgentExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan AgentExportJob, len(ids))
	results := make(chan AgentExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		for i, agentID := range ids {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			if err := limiter.Wait(ctx); err != nil {
				close(jobs)
				return
			}

			e.sendProgress(prog, fetchAgentUpdate(i+1, len(ids), agentID))

			export, err := e.fetchExport(ctx, agentID)
			if err != nil {
				results <- AgentExportResult{
					AgentID:   agentID,
					AgentName: fmt.Sprintf("Unknown (%s)", agentID),
					Success:   false,
					Error:     fmt.Errorf("failed to fetch agent: %w", err),
				}
				continue
			}

			jobs <- AgentExportJob{
				AgentID: agentID,
				Export:  export,
			}

			e.sendProgress(prog, fetchedAgentUpdate(i+1, len(ids), &export.Agent, len(export.Episodes)))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(
				completed,
				len(ids),
				res.AgentName,
				len(res.Files),
			))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(
				completed,
				len(ids),
				res.AgentName,
				res.Error,
			))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(e.buildManifest(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// buildManifest converts the run result into the formatter's manifest shape.
func (e *ExportEngine) buildManifest(result *BulkExportResult, format string) formatter.BulkExportManifest {
	manifest := formatter.BulkExportManifest{
		Format:            format,
		GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
		TotalAgents:       result.TotalAgents,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		Agents:            make([]formatter.ManifestEntry, 0, len(result.Results)),
	}

	for _, res := range result.Results {
		entry := formatter.ManifestEntry{
			AgentID:   res.AgentID,
			AgentName: res.AgentName,
			Success:   res.Success,
			Files:     res.Files,
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		manifest.Agents = append(manifest.Agents, entry)
	}

	return manifest
}

// exportWorker is a worker goroutine that exports agents from the jobs channel.
func (e *ExportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan AgentExportJob,
	results chan<- AgentExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := e.exportSingleAgent(job, opts)
		results <- res
	}
}

// exportSingleAgent exports a single agent to the appropriate format.
func (e *ExportEngine) exportSingleAgent(
	j AgentExportJob,
	opts BulkExportOpts,
) AgentExportResult {
	result := AgentExportResult{
		AgentID:   j.AgentID,
		AgentName: j.Export.Agent.Name,
		Success:   false,
		Files:     []string{},
	}

	switch opts.Format {
	case "csv":
		baseFilepath := filepath.Join(opts.OutputDir, j.Export.Agent.ID)
		csvRes, err := formatter.WriteCSVExport(j.Export, baseFilepath)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.EpisodesFile, csvRes.MetadataFile}
		result.Success = true

	case "markdown":
		outputDir := filepath.Join(opts.OutputDir, j.Export.Agent.ID)
		mdRes, err := formatter.WriteMarkdownExport(j.Export, outputDir, j.Export.Agent.PodcastArtworkURL)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files
		result.Success = true

	case "txt":
		txtPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_episodes.txt", j.Export.Agent.ID))
		path, err := formatter.WriteTextExport(j.Export, txtPath)
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
		result.Success = true

	case "json":
		fallthrough
	default:
		jsonPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", j.Export.Agent.ID))
		data, err := shared.MarshalJSON(j.Export, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{jsonPath}
		result.Success = true
	}
	return result
}
