package blocks

import (
	"slices"

	"github.com/anish3d/folio/internal/models"
	"github.com/google/uuid"
)

// Regroup merges each run of adjacent bulleted (or numbered) list items into
// one synthetic bulleted_list (or numbered_list) block. Any other block,
// existing wrappers included, is passed through and ends the current run.
func Regroup(in []models.Block) []models.Block {
	out := make([]models.Block, 0, len(in))
	for _, b := range in {
		wrapper, ok := wrapperFor(b.Type)
		if !ok {
			if isSynthetic(b) {
				// Later items may be merged in; keep the input's slice intact.
				b.Children = slices.Clone(b.Children)
			}
			out = append(out, b)
			continue
		}
		if n := len(out); n > 0 && out[n-1].Type == wrapper && isSynthetic(out[n-1]) {
			out[n-1].Children = append(out[n-1].Children, b)
			continue
		}
		out = append(out, models.Block{
			ID:          uuid.NewString(),
			Type:        wrapper,
			HasChildren: true,
			Content:     &models.List{},
			Children:    []models.Block{b},
		})
	}
	return out
}

// RegroupTree applies Regroup to the top level and to every children
// sequence below it. The items of a wrapper are not regrouped again, only
// their own children are.
func RegroupTree(in []models.Block) []models.Block {
	out := Regroup(in)
	for i := range out {
		regroupChildren(&out[i])
	}
	return out
}

func regroupChildren(b *models.Block) {
	if len(b.Children) == 0 {
		return
	}
	if isSynthetic(*b) {
		for j := range b.Children {
			regroupChildren(&b.Children[j])
		}
		return
	}
	b.Children = RegroupTree(b.Children)
}

func wrapperFor(t models.BlockType) (models.BlockType, bool) {
	switch t {
	case models.BlockBulletedListItem:
		return models.BlockBulletedList, true
	case models.BlockNumberedListItem:
		return models.BlockNumberedList, true
	}
	return "", false
}

func isSynthetic(b models.Block) bool {
	_, ok := b.Content.(*models.List)
	return ok
}
