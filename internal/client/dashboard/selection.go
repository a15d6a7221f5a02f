package dashboard

import "github.com/dmitrijs2005/valetkey/internal/client/models"

// Selection is an insertion-ordered set of file ids. The zero value is an
// empty selection.
type Selection struct {
	ids []models.ID
	set map[models.ID]struct{}
}

// Toggle adds id if absent and removes it otherwise.
func (s *Selection) Toggle(id models.ID) {
	if s.Contains(id) {
		delete(s.set, id)
		for i, v := range s.ids {
			if v == id {
				s.ids = append(s.ids[:i], s.ids[i+1:]...)
				break
			}
		}
		return
	}
	if s.set == nil {
		s.set = map[models.ID]struct{}{}
	}
	s.set[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s Selection) Contains(id models.ID) bool {
	_, ok := s.set[id]
	return ok
}

// Replace makes ids the whole selection, dropping duplicates.
func (s *Selection) Replace(ids []models.ID) {
	s.Clear()
	for _, id := range ids {
		if !s.Contains(id) {
			s.Toggle(id)
		}
	}
}

func (s *Selection) Clear() {
	s.ids = nil
	s.set = nil
}

// IDs returns a copy of the selected ids in selection order.
func (s Selection) IDs() []models.ID {
	return append([]models.ID(nil), s.ids...)
}

func (s Selection) Len() int { return len(s.ids) }

func (s Selection) clone() Selection {
	var c Selection
	c.Replace(s.ids)
	return c
}
