package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aretw0/strata"
	"github.com/aretw0/strata/pkg/annotators"
	"github.com/aretw0/strata/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, failCategories bool) *Server {
	t.Helper()
	svc := strata.New()
	require.NoError(t, svc.AddAnnotator(annotators.NewNormalizer(annotators.NormalizerOptions{})))
	require.NoError(t, svc.AddAnnotator(annotators.NewStopwordTagger(annotators.StopwordOptions{Terms: []string{"the"}})))
	require.NoError(t, svc.AddAnnotator(annotators.NewFunc("counter", "COUNT", []string{domain.ViewStopwords},
		func(ctx context.Context, doc *domain.Document, cfg domain.RuntimeConfig) (any, error) {
			if failCategories {
				return nil, errors.New("boom")
			}
			return len(doc.Tokens()), nil
		})))
	return NewServer(svc, nil)
}

func TestHandlePlan(t *testing.T) {
	s := newTestServer(t, false)

	resp, err := s.handlePlan(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"views":   []any{"COUNT"},
		"present": []any{domain.ViewNormalized},
	})
	require.NoError(t, err)
	require.Len(t, resp.Steps, 2)
	assert.Equal(t, domain.ViewStopwords, resp.Steps[0].View)
	assert.Equal(t, "COUNT", resp.Steps[1].View)
	assert.Equal(t, "COUNT", resp.Steps[0].Requested)

	_, err = s.handlePlan(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{"views": "GHOST"})
	assert.ErrorIs(t, err, domain.ErrUnresolvableView)
}

func TestHandleAnnotate(t *testing.T) {
	s := newTestServer(t, false)

	resp, err := s.handleAnnotate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"text":  "<p>The Chip rally</p>",
		"html":  true,
		"views": []any{domain.ViewStopwords},
	})
	require.NoError(t, err)
	assert.Equal(t, "default/mcp", resp.DocumentKey)
	assert.Equal(t, []string{"The", "Chip", "rally"}, resp.Tokens)
	assert.Empty(t, resp.Error)
	assert.Len(t, resp.Views, 2)
	assert.Equal(t, []string{"the", "chip", "rally"}, resp.Views[domain.ViewNormalized])
}

func TestHandleAnnotate_PartialFailure(t *testing.T) {
	s := newTestServer(t, true)

	resp, err := s.handleAnnotate(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"text": "The chip rally",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Error, "counter")
	assert.Contains(t, resp.Views, domain.ViewStopwords)
	assert.NotContains(t, resp.Views, "COUNT")
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t, false)

	msg := json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	out := s.MCPServer().HandleMessage(context.Background(), msg)
	data, err := json.Marshal(out)
	require.NoError(t, err)

	for _, tool := range []string{"list_views", "plan_views", "annotate_text"} {
		assert.Contains(t, string(data), `"name":"`+tool+`"`)
	}
}

func TestStringList(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, stringList([]any{"A", "", "B", 3}))
	assert.Equal(t, []string{"A", "B"}, stringList(" A, ,B"))
	assert.Nil(t, stringList(nil))
}
