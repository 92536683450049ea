package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	DocumentID  string      `json:"document_id,omitempty"`
	PageCount   int         `json:"page_count"`
	Annotations int         `json:"annotations"`
	PerPage     map[int]int `json:"per_page,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := StoreState{
		Annotations: len(s.byID),
	}
	if s.doc != nil {
		st.DocumentID = s.doc.ID
		st.PageCount = len(s.doc.Pages)
	}
	if len(s.byPage) > 0 {
		st.PerPage = make(map[int]int, len(s.byPage))
		for page, seq := range s.byPage {
			if len(seq) > 0 {
				st.PerPage[page] = len(seq)
			}
		}
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
