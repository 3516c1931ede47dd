// package formatter provides functions to export episode data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/podbridge/podbridge/internal/models"
	"github.com/podbridge/podbridge/internal/shared"
)

// ExportToCSV converts an EpisodeExport to CSV format with columns: ID, Title, VideoID, Duration, Published, AudioURL
func ExportToCSV(export *models.EpisodeExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "VideoID", "Duration", "Published", "AudioURL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, episode := range export.Episodes {
		record := []string{
			episode.ID,
			episode.Title,
			episode.YouTubeVideoID,
			strconv.Itoa(episode.DurationSeconds),
			episode.PublishedAt,
			episode.AudioURL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an EpisodeExport to Markdown format with optional cover image
func ExportToMarkdown(export *models.EpisodeExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	title := export.Agent.PodcastTitle
	if title == "" {
		title = export.Agent.Name
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if export.Agent.PodcastDescription != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", export.Agent.PodcastDescription))
	}
	if export.Agent.PodcastAuthor != "" {
		buf.WriteString(fmt.Sprintf("**Author**: %s\n", export.Agent.PodcastAuthor))
	}
	buf.WriteString(fmt.Sprintf("**Channel**: %s\n", export.Agent.YouTubeChannelURL))
	buf.WriteString(fmt.Sprintf("**Episodes**: %d\n\n", len(export.Episodes)))

	buf.WriteString("## Episodes\n\n")
	for i, episode := range export.Episodes {
		duration := shared.FormatDuration(episode.DurationSeconds)
		statePart := ""
		if !episode.IsPublished {
			statePart = fmt.Sprintf(" (%s)", shared.PublishedString(false))
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s [%s]\n", i+1, episode.Title, statePart, duration))
	}

	return buf.Bytes(), nil
}

// ExportToText converts an EpisodeExport to plain text format
func ExportToText(export *models.EpisodeExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Agent: %s\n", export.Agent.Name))
	if export.Agent.PodcastTitle != "" {
		buf.WriteString(fmt.Sprintf("Podcast: %s\n", export.Agent.PodcastTitle))
	}
	buf.WriteString(fmt.Sprintf("Episodes: %d\n\n", len(export.Episodes)))

	for i, episode := range export.Episodes {
		buf.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, episode.Title, episode.YouTubeVideoID))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ExportToJSON converts an EpisodeExport to indented JSON
func ExportToJSON(export *models.EpisodeExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// ToMetadataJSON generates a JSON representation of agent metadata (without episodes)
func ToMetadataJSON(agent models.Agent) ([]byte, error) {
	return shared.MarshalJSON(agent, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	EpisodesFile string
	MetadataFile string
}

// WriteCSVExport exports an agent's episodes to CSV format with accompanying metadata JSON file.
//
// Defaults to the agent ID as the base filename & creates {base}_episodes.csv and {base}_metadata.json
func WriteCSVExport(export *models.EpisodeExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.Agent.ID
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	episodesFile := baseFilepath + "_episodes.csv"
	if err := os.WriteFile(episodesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export.Agent)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		EpisodesFile: episodesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports an agent's episodes to Markdown format in a dedicated directory.
//
// Directory name defaults to the agent ID.
// The imageURL parameter is optional - if provided, attempts to download the podcast artwork.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *models.EpisodeExport, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.Agent.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports an agent's episodes to plain text format.
//
// Defaults to {agent.ID}_episodes.txt as the filename.
func WriteTextExport(export *models.EpisodeExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_episodes.txt", export.Agent.ID)
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// ManifestEntry records the outcome of one agent's export within a
// bulk run.
type ManifestEntry struct {
	AgentID   string   `json:"agent_id"`
	AgentName string   `json:"agent_name"`
	Success   bool     `json:"success"`
	Files     []string `json:"files,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// BulkExportManifest summarizes a multi-agent export run.
type BulkExportManifest struct {
	Format            string          `json:"format"`
	GeneratedAt       string          `json:"generated_at"`
	TotalAgents       int             `json:"total_agents"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Agents            []ManifestEntry `json:"agents"`
}

// WriteBulkExportManifest writes the manifest JSON for a bulk export run.
func WriteBulkExportManifest(manifest BulkExportManifest, path string) error {
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}
