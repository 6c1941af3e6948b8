// Package flatview projects UnifiedSections into the flat chapters[] array
// the front end consumes.
package flatview

import (
	"github.com/samber/lo"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
	"github.com/buildsense-ai/review-app-sub000/internal/ordered"
)

// Build walks sections in order and emits one Chapter per record whose
// status indicates a real modification, skipping unchanged/no-evidence
// records per the flat view's filtering contract.
func Build(sections *model.UnifiedSections) []model.Chapter {
	var records []*model.SectionRecord
	sections.Range(func(_ string, inner *ordered.Map[*model.SectionRecord]) bool {
		inner.Range(func(_ string, record *model.SectionRecord) bool {
			records = append(records, record)
			return true
		})
		return true
	})

	modified := lo.Filter(records, func(r *model.SectionRecord, _ int) bool {
		return r.Status.IsRealModification()
	})

	return lo.Map(modified, func(r *model.SectionRecord, _ int) model.Chapter {
		return model.Chapter{
			OriginalText: r.OriginalContent,
			EditText:     r.RegeneratedContent,
			Comment:      r.Comment,
		}
	})
}
