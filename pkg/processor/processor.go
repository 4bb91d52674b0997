package processor

import (
	"fmt"
	"strings"

	"github.com/xhad/fileseed/internal/models"
	"github.com/xhad/fileseed/internal/types"
)

type ProcessorConfig struct {
	InferTypes     bool
	LowercaseTypes bool
	// TypeSeparators are tried in order when inferring a type from a
	// filename. Defaults to "." then "_".
	TypeSeparators []string
}

type Processor struct {
	config ProcessorConfig
}

var _ types.Processor = (*Processor)(nil)

func NewWithConfig(config ProcessorConfig) Processor {
	if len(config.TypeSeparators) == 0 {
		config.TypeSeparators = []string{".", "_"}
	}

	return Processor{
		config: config,
	}
}

// Process normalizes seed entries. Order and duplicates are preserved.
func (p *Processor) Process(entries []models.SeedEntry) ([]models.SeedEntry, error) {
	processed := make([]models.SeedEntry, 0, len(entries))

	for i, entry := range entries {
		filename := strings.TrimSpace(entry.Filename)
		if filename == "" {
			return nil, fmt.Errorf("entry %d: filename is empty", i)
		}

		fileType := strings.TrimSpace(entry.FileType)
		if fileType == "" && p.config.InferTypes {
			fileType = p.inferType(filename)
		}
		if fileType == "" {
			return nil, fmt.Errorf("entry %d (%s): file type is empty", i, filename)
		}

		if p.config.LowercaseTypes {
			fileType = strings.ToLower(fileType)
		}

		processed = append(processed, models.SeedEntry{
			Filename: filename,
			FileType: fileType,
		})
	}

	return processed, nil
}

// inferType returns the suffix after the last separator, e.g.
// "Orientation Info.docx" -> "docx", "index_faiss" -> "faiss".
func (p *Processor) inferType(filename string) string {
	for _, sep := range p.config.TypeSeparators {
		idx := strings.LastIndex(filename, sep)
		if idx <= 0 || idx == len(filename)-len(sep) {
			continue
		}
		return filename[idx+len(sep):]
	}
	return ""
}
