// package formatter provides functions to export draft playlists to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/pixelpusher829/jammming/internal/models"
	"github.com/pixelpusher829/jammming/internal/shared"
)

// ExportToCSV converts a draft to CSV format with columns: ID, Title, Artist, Album, URI
func ExportToCSV(draft *models.Draft) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "URI"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range draft.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			track.Album,
			track.URI,
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

// ExportToMarkdown converts a draft to Markdown format
func ExportToMarkdown(draft *models.Draft) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", draft.Name))

	if draft.SpotifyID != "" {
		buf.WriteString(fmt.Sprintf("**Spotify**: %s\n", draft.SpotifyID))
	}
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", len(draft.Tracks)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range draft.Tracks {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s\n", i+1, track.Artist, track.Title, albumPart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a draft to plain text format
func ExportToText(draft *models.Draft) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", draft.Name))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(draft.Tracks)))

	for i, track := range draft.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of draft metadata (without tracks)
func ToMetadataJSON(draft *models.Draft) ([]byte, error) {
	meta := struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		SpotifyID string `json:"spotify_id,omitempty"`
		Tracks    int    `json:"tracks"`
	}{draft.DraftID, draft.Name, draft.SpotifyID, len(draft.Tracks)}
	return shared.MarshalJSON(meta, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a draft to CSV format with an accompanying metadata JSON file.
//
// Defaults to the draft ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(draft *models.Draft, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = draft.DraftID
	}

	csvData, err := ExportToCSV(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a draft to {dir}/README.md, creating the
// directory when needed. The directory name defaults to the draft ID.
func WriteMarkdownExport(draft *models.Draft, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = draft.DraftID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	mdData, err := ExportToMarkdown(draft)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return mdFile, nil
}

// WriteTextExport exports a draft to plain text format.
//
// Defaults to {draft.DraftID}_tracks.txt as the filename.
func WriteTextExport(draft *models.Draft, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_tracks.txt", draft.DraftID)
	}

	textData, err := ExportToText(draft)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
