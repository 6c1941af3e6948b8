package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

func TestTable_Analyze_ParsesInstructionsFromValidJSON(t *testing.T) {
	client := &fakeClient{responses: []string{`[{"subtitle":"1.2 目标","suggestion":"转换为表格并说明列"}]`}}
	tbl := &Table{Opts: &Options{Client: client}}

	instrs, note, err := tbl.Analyze(context.Background(), "标题", buildSections(t))
	require.NoError(t, err)
	assert.Empty(t, note)
	require.Len(t, instrs, 1)
	assert.Equal(t, "1.2 目标", instrs[0].Subtitle)
}

func TestTable_Analyze_DegradedResponseYieldsNote(t *testing.T) {
	client := &fakeClient{responses: []string{"自由文本回复"}}
	tbl := &Table{Opts: &Options{Client: client}}

	instrs, note, err := tbl.Analyze(context.Background(), "标题", buildSections(t))
	require.NoError(t, err)
	assert.Nil(t, instrs)
	assert.Contains(t, note, "table analyzer")
}

func TestTable_Analyze_ClientErrorPropagates(t *testing.T) {
	client := &fakeClient{err: errors.New("down")}
	tbl := &Table{Opts: &Options{Client: client}}

	_, _, err := tbl.Analyze(context.Background(), "标题", buildSections(t))
	require.Error(t, err)
}

func TestTable_Modify_UsesStatusTableOptimized(t *testing.T) {
	client := &fakeClient{responses: []string{"| 列1 | 列2 |\n| --- | --- |\n| a | b |"}}
	tbl := &Table{Opts: &Options{Client: client}}

	results := tbl.Modify(context.Background(), buildSections(t),
		[]model.ModificationInstruction{{Subtitle: "1.2 目标", Suggestion: "转换为表格"}})

	require.Len(t, results, 1)
	assert.Equal(t, model.StatusTableOptimized, results[0].Record.Status)
}
