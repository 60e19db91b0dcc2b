package blocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/anish3d/folio/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	mu       sync.Mutex
	children map[string][]models.Block
	fail     map[string]error
	calls    map[string]int
}

func newFakeLister() *fakeLister {
	return &fakeLister{
		children: map[string][]models.Block{},
		fail:     map[string]error{},
		calls:    map[string]int{},
	}
}

func (f *fakeLister) ListChildren(_ context.Context, id string) ([]models.Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if err := f.fail[id]; err != nil {
		return nil, err
	}
	// Hand out copies so callers never share backing arrays.
	return append([]models.Block(nil), f.children[id]...), nil
}

func para(id string) models.Block {
	return models.Block{ID: id, Type: models.BlockParagraph, Content: &models.Paragraph{
		RichText: []models.RichText{{PlainText: id}},
	}}
}

func parent(id string, typ models.BlockType) models.Block {
	_, content := models.NewContent(typ)
	return models.Block{ID: id, Type: typ, HasChildren: true, Content: content}
}

func bullet(id string) models.Block {
	return models.Block{ID: id, Type: models.BlockBulletedListItem, Content: &models.ListItem{}}
}

func numbered(id string) models.Block {
	return models.Block{ID: id, Type: models.BlockNumberedListItem, Content: &models.ListItem{}}
}

func ids(blocks []models.Block) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.ID
	}
	return out
}

func TestResolve_AttachesChildrenInOrder(t *testing.T) {
	f := newFakeLister()
	f.children["page"] = []models.Block{parent("t1", models.BlockToggle), para("p1"), parent("q1", models.BlockQuote)}
	f.children["t1"] = []models.Block{para("t1a"), para("t1b")}
	f.children["q1"] = []models.Block{para("q1a")}

	tree, err := NewResolver(f).Resolve(context.Background(), "page")
	require.NoError(t, err)

	assert.Equal(t, []string{"t1", "p1", "q1"}, ids(tree))
	assert.Equal(t, []string{"t1a", "t1b"}, ids(tree[0].Children))
	assert.Nil(t, tree[1].Children)
	assert.Equal(t, []string{"q1a"}, ids(tree[2].Children))
}

func TestResolve_SkipsUnsupportedAndChildPages(t *testing.T) {
	f := newFakeLister()
	unsupported := models.Block{ID: "u1", Type: models.BlockUnsupported, HasChildren: true, Content: &models.Unsupported{Kind: "synced_block"}}
	f.children["page"] = []models.Block{unsupported, parent("c1", models.BlockChildPage)}
	f.children["u1"] = []models.Block{para("hidden")}
	f.children["c1"] = []models.Block{para("other-doc")}

	tree, err := NewResolver(f).Resolve(context.Background(), "page")
	require.NoError(t, err)
	assert.Empty(t, tree[0].Children)
	assert.Empty(t, tree[1].Children)
	assert.Zero(t, f.calls["u1"])
	assert.Zero(t, f.calls["c1"])
}

func TestResolve_ColumnsResolvedTwoLevels(t *testing.T) {
	f := newFakeLister()
	f.children["page"] = []models.Block{parent("cols", models.BlockColumnList)}
	f.children["cols"] = []models.Block{parent("colA", models.BlockColumn), parent("colB", models.BlockColumn)}
	f.children["colA"] = []models.Block{para("a1"), para("a2"), para("a3")}
	f.children["colB"] = []models.Block{para("b1"), para("b2"), para("b3")}

	tree, err := NewResolver(f).Resolve(context.Background(), "page")
	require.NoError(t, err)

	require.Len(t, tree, 1)
	cols := tree[0].Children
	require.Len(t, cols, 2)
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids(cols[0].Children))
	assert.Equal(t, []string{"b1", "b2", "b3"}, ids(cols[1].Children))
	assert.Equal(t, 1, f.calls["page"])
	assert.Equal(t, 1, f.calls["colA"])
}

func TestResolve_ColumnContentsAreNotExpanded(t *testing.T) {
	f := newFakeLister()
	f.children["page"] = []models.Block{parent("cols", models.BlockColumnList)}
	f.children["cols"] = []models.Block{parent("colA", models.BlockColumn)}
	f.children["colA"] = []models.Block{parent("toggle", models.BlockToggle)}
	f.children["toggle"] = []models.Block{para("hidden")}

	tree, err := NewResolver(f).Resolve(context.Background(), "page")
	require.NoError(t, err)
	col := tree[0].Children[0]
	assert.Equal(t, []string{"toggle"}, ids(col.Children))
	assert.Empty(t, col.Children[0].Children)
	assert.Zero(t, f.calls["toggle"])

	tree, err = NewResolver(f, WithDepth(2)).Resolve(context.Background(), "page")
	require.NoError(t, err)
	assert.Equal(t, []string{"hidden"}, ids(tree[0].Children[0].Children[0].Children))
}

func TestResolve_DefaultDepthStopsBelowFirstLevel(t *testing.T) {
	f := newFakeLister()
	f.children["page"] = []models.Block{parent("t1", models.BlockToggle)}
	f.children["t1"] = []models.Block{parent("t2", models.BlockToggle)}
	f.children["t2"] = []models.Block{para("deep")}

	tree, err := NewResolver(f).Resolve(context.Background(), "page")
	require.NoError(t, err)
	assert.Empty(t, tree[0].Children[0].Children)
	assert.Zero(t, f.calls["t2"])

	tree, err = NewResolver(f, WithDepth(3)).Resolve(context.Background(), "page")
	require.NoError(t, err)
	assert.Equal(t, []string{"deep"}, ids(tree[0].Children[0].Children))
}

func TestResolve_FailurePropagates(t *testing.T) {
	f := newFakeLister()
	boom := errors.New("boom")
	f.children["page"] = []models.Block{para("p1"), parent("t1", models.BlockToggle)}
	f.fail["t1"] = boom

	_, err := NewResolver(f, WithConcurrency(2)).Resolve(context.Background(), "page")
	assert.ErrorIs(t, err, boom)

	f.fail["page"] = boom
	_, err = NewResolver(f).Resolve(context.Background(), "page")
	assert.ErrorIs(t, err, boom)
}

func TestResolve_ManySiblingsKeepOrder(t *testing.T) {
	f := newFakeLister()
	var top []models.Block
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("t%02d", i)
		top = append(top, parent(id, models.BlockToggle))
		f.children[id] = []models.Block{para(id + "-child")}
	}
	f.children["page"] = top

	tree, err := NewResolver(f, WithConcurrency(4)).Resolve(context.Background(), "page")
	require.NoError(t, err)
	for i, b := range tree {
		id := fmt.Sprintf("t%02d", i)
		assert.Equal(t, id, b.ID)
		assert.Equal(t, []string{id + "-child"}, ids(b.Children))
	}
}

func TestRegroup_Scenario(t *testing.T) {
	out := Regroup([]models.Block{bullet("A"), bullet("B"), para("C"), bullet("D")})

	require.Len(t, out, 3)
	assert.Equal(t, models.BlockBulletedList, out[0].Type)
	assert.Equal(t, []string{"A", "B"}, ids(out[0].Children))
	assert.True(t, out[0].HasChildren)
	assert.NotEmpty(t, out[0].ID)
	assert.Equal(t, "C", out[1].ID)
	assert.Equal(t, models.BlockBulletedList, out[2].Type)
	assert.Equal(t, []string{"D"}, ids(out[2].Children))
	assert.NotEqual(t, out[0].ID, out[2].ID)
}

func TestRegroup_MixedKindsStartNewWrappers(t *testing.T) {
	out := Regroup([]models.Block{numbered("1"), numbered("2"), bullet("x"), numbered("3")})

	require.Len(t, out, 3)
	assert.Equal(t, models.BlockNumberedList, out[0].Type)
	assert.Equal(t, []string{"1", "2"}, ids(out[0].Children))
	assert.Equal(t, models.BlockBulletedList, out[1].Type)
	assert.Equal(t, models.BlockNumberedList, out[2].Type)
}

func TestRegroup_AlreadyWrappedUnchanged(t *testing.T) {
	once := Regroup([]models.Block{bullet("A"), para("C"), numbered("N")})
	twice := Regroup(once)
	assert.Equal(t, once, twice)
}

func TestRegroup_CountInvariant(t *testing.T) {
	inputs := [][]models.Block{
		{},
		{para("a")},
		{bullet("a"), bullet("b"), bullet("c")},
		{bullet("a"), numbered("b"), para("c"), numbered("d"), numbered("e"), bullet("f"), para("g")},
	}
	for _, in := range inputs {
		out := Regroup(in)
		total, runs := 0, 0
		for _, b := range out {
			if isSynthetic(b) {
				runs++
				total += len(b.Children)
			} else {
				total++
			}
		}
		assert.Equal(t, len(in), total)
		assert.Equal(t, countRuns(in), runs)
	}
}

func countRuns(in []models.Block) int {
	runs := 0
	var prev models.BlockType
	for _, b := range in {
		if b.IsListItem() && b.Type != prev {
			runs++
		}
		prev = b.Type
	}
	return runs
}

func TestRegroup_DoesNotMutateInput(t *testing.T) {
	wrapped := Regroup([]models.Block{bullet("A")})
	in := append(wrapped, bullet("B"))

	out := Regroup(in)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"A", "B"}, ids(out[0].Children))
	assert.Equal(t, []string{"A"}, ids(in[0].Children))
}

func TestRegroupTree_NestedLists(t *testing.T) {
	item := bullet("A")
	item.HasChildren = true
	item.Children = []models.Block{bullet("A1"), bullet("A2")}
	toggle := parent("T", models.BlockToggle)
	toggle.Children = []models.Block{numbered("n1"), numbered("n2")}

	out := RegroupTree([]models.Block{item, bullet("B"), toggle})

	require.Len(t, out, 2)
	list := out[0]
	assert.Equal(t, []string{"A", "B"}, ids(list.Children))
	nested := list.Children[0].Children
	require.Len(t, nested, 1)
	assert.Equal(t, models.BlockBulletedList, nested[0].Type)
	assert.Equal(t, []string{"A1", "A2"}, ids(nested[0].Children))

	require.Len(t, out[1].Children, 1)
	assert.Equal(t, models.BlockNumberedList, out[1].Children[0].Type)
}

type fakeFetcher struct {
	data map[string][]byte
}

func (f fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if d, ok := f.data[url]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("404 for %s", url)
}

type fakeMirror struct {
	mu   sync.Mutex
	seen []string
}

func (m *fakeMirror) Mirror(_ context.Context, src string, _ []byte) (string, error) {
	m.mu.Lock()
	m.seen = append(m.seen, src)
	m.mu.Unlock()
	return "https://cdn.test/" + src[len(src)-5:], nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func imageBlock(id, url string) models.Block {
	return models.Block{ID: id, Type: models.BlockImage, Content: &models.Image{
		FileObject: models.FileObject{Type: "external", External: &models.ExternalFile{URL: url}},
	}}
}

func TestEnrich_ImagesAtAnyDepth(t *testing.T) {
	fetcher := fakeFetcher{data: map[string][]byte{
		"https://img.test/a.png": pngBytes(t, 640, 480),
		"https://img.test/b.png": pngBytes(t, 100, 300),
	}}
	toggle := parent("t", models.BlockToggle)
	toggle.Children = []models.Block{imageBlock("inner", "https://img.test/b.png")}
	tree := []models.Block{imageBlock("top", "https://img.test/a.png"), para("p"), toggle}

	mirror := &fakeMirror{}
	require.NoError(t, NewEnricher(fetcher, nil, WithMirror(mirror)).Enrich(context.Background(), tree))

	top := tree[0].Content.(*models.Image)
	require.NotNil(t, top.Size)
	assert.Equal(t, 640, top.Size.Width)
	assert.Equal(t, 480, top.Size.Height)
	assert.Contains(t, top.Placeholder, "data:image/png;base64,")
	assert.NotEmpty(t, top.BlurHash)
	assert.Equal(t, "https://cdn.test/a.png", top.MirrorURL)

	inner := tree[2].Children[0].Content.(*models.Image)
	require.NotNil(t, inner.Size)
	assert.Equal(t, 300, inner.Size.Height)
	assert.Len(t, mirror.seen, 2)

	assert.Equal(t, "p", models.PlainText(tree[1].RichText()))
}

func TestEnrich_FailurePolicy(t *testing.T) {
	tree := func() []models.Block {
		return []models.Block{imageBlock("broken", "https://img.test/missing.png")}
	}

	lenient := tree()
	require.NoError(t, NewEnricher(fakeFetcher{}, nil).Enrich(context.Background(), lenient))
	img := lenient[0].Content.(*models.Image)
	assert.Nil(t, img.Size)
	assert.Equal(t, "https://img.test/missing.png", img.SourceURL())

	err := NewEnricher(fakeFetcher{}, nil, WithStrict(true)).Enrich(context.Background(), tree())
	var imgErr *ImageError
	require.ErrorAs(t, err, &imgErr)
	assert.Equal(t, "broken", imgErr.BlockID)
}

func TestPipeline_Page(t *testing.T) {
	f := newFakeLister()
	f.children["page"] = []models.Block{bullet("A"), bullet("B"), imageBlock("img", "https://img.test/a.png")}
	fetcher := fakeFetcher{data: map[string][]byte{"https://img.test/a.png": pngBytes(t, 10, 10)}}

	p := NewPipeline(NewResolver(f), NewEnricher(fetcher, nil), nil)
	tree, err := p.Page(context.Background(), "page")
	require.NoError(t, err)

	require.Len(t, tree, 2)
	assert.Equal(t, models.BlockBulletedList, tree[0].Type)
	assert.Equal(t, 10, tree[1].Content.(*models.Image).Size.Width)
}
