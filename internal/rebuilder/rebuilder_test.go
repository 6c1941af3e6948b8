package rebuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

func unifiedWith(h1, key string, record *model.SectionRecord) *model.UnifiedSections {
	out := model.NewUnifiedSections()
	out.Put(h1, key, record)
	return out
}

func TestRebuild_ReplacesModifiedSectionBody(t *testing.T) {
	original := "# 报告\n\n## 一\n原文一。\n\n## 二\n原文二。\n"
	sections := unifiedWith("报告", "一", &model.SectionRecord{
		OriginalContent:    "## 一\n原文一。\n\n",
		RegeneratedContent: "改写后的一。\n",
		Status:             model.StatusModified,
	})

	got := Rebuild(original, sections)
	assert.Contains(t, got, "改写后的一。")
	assert.Contains(t, got, "原文二。")
	assert.Contains(t, got, "## 一")
	assert.Contains(t, got, "## 二")
}

func TestRebuild_PreservesUnmatchedSectionsVerbatim(t *testing.T) {
	original := "# 报告\n\n## 一\n原文一。\n"
	sections := model.NewUnifiedSections()

	got := Rebuild(original, sections)
	assert.Equal(t, original, got)
}

func TestRebuild_NoOpStatusLeavesBodyUntouched(t *testing.T) {
	original := "# 报告\n\n## 一\n原文一。\n"
	sections := unifiedWith("报告", "一", &model.SectionRecord{
		OriginalContent:    "## 一\n原文一。\n",
		RegeneratedContent: "原文一。\n",
		Status:             model.StatusSuccess,
	})

	got := Rebuild(original, sections)
	assert.Equal(t, original, got)
}

func TestRebuild_TolerantSubstringMatch(t *testing.T) {
	original := "# 报告\n\n## 建设内容概述\n四个条目。\n"
	sections := unifiedWith("报告", "建设内容", &model.SectionRecord{
		RegeneratedContent: "表格化内容。\n",
		Status:             model.StatusTableOptimized,
	})

	got := Rebuild(original, sections)
	require.Contains(t, got, "表格化内容。")
	assert.NotContains(t, got, "四个条目。")
}

func TestRebuild_PrologueIsPreservedVerbatim(t *testing.T) {
	original := "hello world\n\n# 报告\n\n## 一\n正文。\n"
	sections := model.NewUnifiedSections()

	got := Rebuild(original, sections)
	assert.Equal(t, original, got)
}
