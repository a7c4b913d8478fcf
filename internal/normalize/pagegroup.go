package normalize

import (
	"sort"

	"docsight/internal/domain"
)

// PageGroup holds one page's elements in source order.
type PageGroup struct {
	PageID   int              `json:"page_id"`
	Elements []domain.Element `json:"elements"`
}

// PageGroups is the derived page-keyed projection of an element list.
// Elements without a page association form the separate NoPage bucket;
// the two are never merged.
type PageGroups struct {
	Pages  []PageGroup      `json:"pages"`
	NoPage []domain.Element `json:"no_page,omitempty"`
}

// GroupByPage buckets elements by PageID with pages in ascending order
// and source order preserved within each bucket. The projection is
// recomputed from the element list on every call and stores nothing.
func GroupByPage(elements []domain.Element) PageGroups {
	byPage := make(map[int][]domain.Element)
	var noPage []domain.Element
	for _, e := range elements {
		if e.PageID == nil {
			noPage = append(noPage, e)
			continue
		}
		byPage[*e.PageID] = append(byPage[*e.PageID], e)
	}

	ids := make([]int, 0, len(byPage))
	for id := range byPage {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	groups := PageGroups{Pages: make([]PageGroup, 0, len(ids)), NoPage: noPage}
	for _, id := range ids {
		groups.Pages = append(groups.Pages, PageGroup{PageID: id, Elements: byPage[id]})
	}
	return groups
}
