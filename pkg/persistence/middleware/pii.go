package middleware

import (
	"context"
	"regexp"

	"github.com/zapflow/zapflow/pkg/domain"
	"github.com/zapflow/zapflow/pkg/ports"
)

type piiMiddleware struct {
	next     ports.FlowStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks screen data values whose
// keys match the patterns. Screen data often carries sample customer values
// (the preview examples), and those must not reach the backing store in
// clear text when the key names them as sensitive.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.FlowStore) ports.FlowStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, flowID string, spec domain.Spec) error {
	// Clone first: the in-memory spec held by the session must not see the
	// masking.
	cloned := spec.Clone()
	for i := range cloned.Screens {
		maskMap(cloned.Screens[i].Data, m.patterns)
		maskMap(cloned.Screens[i].Action.Payload, m.patterns)
	}
	return m.next.Save(ctx, flowID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, flowID string) (domain.Spec, error) {
	return m.next.Load(ctx, flowID)
}

func (m *piiMiddleware) Delete(ctx context.Context, flowID string) error {
	return m.next.Delete(ctx, flowID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
