package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ErichSuter/fmu-dataio/internal/runcontext"
	"github.com/ErichSuter/fmu-dataio/internal/warn"
	"github.com/ErichSuter/fmu-dataio/pkg/fmuresults"
)

// Scanner walks a case tree, validates every metadata sidecar and
// indexes the valid ones. Metrics is optional.
type Scanner struct {
	Store   Store
	Metrics *Metrics
}

// Summary reports one scan.
type Summary struct {
	CaseUUID string
	CaseName string
	Scanned  int
	Valid    int
	Invalid  int
	Indexed  int
}

// Scan indexes the case rooted at casePath. Invalid sidecars are
// counted and warned about but do not abort the scan.
func (s *Scanner) Scan(ctx context.Context, casePath string) (Summary, error) {
	if s.Store == nil {
		return Summary{}, fmt.Errorf("catalog scanner needs a store")
	}
	marker := filepath.Join(casePath, filepath.FromSlash(runcontext.CaseMetadataRelPath))
	raw, err := os.ReadFile(marker)
	if err != nil {
		return Summary{}, fmt.Errorf("case metadata: %w", err)
	}
	caseDoc, err := fmuresults.ParseCaseDocument(raw)
	if err != nil {
		return Summary{}, fmt.Errorf("case metadata: %w", err)
	}

	summary := Summary{
		CaseUUID: caseDoc.FMU.Case.UUID,
		CaseName: caseDoc.FMU.Case.Name,
	}
	if s.Metrics != nil {
		s.Metrics.ScansTotal.Inc()
	}

	err = filepath.WalkDir(casePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !isSidecar(d.Name()) {
			return nil
		}
		summary.Scanned++
		if s.Metrics != nil {
			s.Metrics.ObjectsScanned.Inc()
		}

		entry, ok := s.index(path)
		if !ok {
			summary.Invalid++
			if s.Metrics != nil {
				s.Metrics.ObjectsInvalid.Inc()
			}
			return nil
		}
		summary.Valid++
		if s.Metrics != nil {
			s.Metrics.ObjectsValid.Inc()
		}
		entry.CaseUUID = summary.CaseUUID
		if err := s.Store.Upsert(ctx, entry); err != nil {
			return fmt.Errorf("index %s: %w", entry.RelativePath, err)
		}
		summary.Indexed++
		if s.Metrics != nil {
			s.Metrics.ObjectsIndexed.Inc()
		}
		return nil
	})
	if err != nil {
		return summary, err
	}
	return summary, nil
}

// isSidecar recognizes the dotted sidecar naming next to an artifact.
func isSidecar(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".yml") && len(name) > len(".yml")+1
}

// index parses and validates one sidecar, returning false when the
// document cannot be indexed.
func (s *Scanner) index(path string) (Entry, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		warn.Warnf("skipping %s: %v", path, err)
		return Entry{}, false
	}
	doc, err := fmuresults.ParseDocument(raw)
	if err != nil {
		warn.Warnf("skipping %s: %v", path, err)
		return Entry{}, false
	}
	if err := doc.Validate(); err != nil {
		warn.Warnf("skipping %s: %v", path, err)
		return Entry{}, false
	}

	entry := Entry{
		RelativePath:   doc.File.RelativePath,
		Name:           doc.Data.Name,
		Content:        string(doc.Data.Content),
		Classification: string(doc.Access.Classification),
		ChecksumMD5:    doc.File.ChecksumMD5,
		IndexedAt:      time.Now().UTC(),
		Document:       raw,
	}
	if doc.File.SizeBytes != nil {
		entry.SizeBytes = *doc.File.SizeBytes
	}
	if doc.FMU != nil {
		entry.Stage = string(doc.FMU.Context.Stage)
		if doc.FMU.Entity != nil {
			entry.EntityUUID = doc.FMU.Entity.UUID
		}
		if doc.FMU.Realization != nil {
			id := doc.FMU.Realization.ID
			entry.RealizationID = &id
		}
	}
	return entry, true
}
