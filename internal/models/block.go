package models

import "time"

// BlockType is the discriminator of a Block.
type BlockType string

const (
	BlockParagraph        BlockType = "paragraph"
	BlockHeading1         BlockType = "heading_1"
	BlockHeading2         BlockType = "heading_2"
	BlockHeading3         BlockType = "heading_3"
	BlockBulletedListItem BlockType = "bulleted_list_item"
	BlockNumberedListItem BlockType = "numbered_list_item"
	BlockToDo             BlockType = "to_do"
	BlockToggle           BlockType = "toggle"
	BlockQuote            BlockType = "quote"
	BlockCode             BlockType = "code"
	BlockImage            BlockType = "image"
	BlockFile             BlockType = "file"
	BlockBookmark         BlockType = "bookmark"
	BlockCallout          BlockType = "callout"
	BlockColumnList       BlockType = "column_list"
	BlockColumn           BlockType = "column"
	BlockDivider          BlockType = "divider"
	BlockChildPage        BlockType = "child_page"
	BlockUnsupported      BlockType = "unsupported"

	// Synthetic wrappers, never returned by Notion.
	BlockBulletedList BlockType = "bulleted_list"
	BlockNumberedList BlockType = "numbered_list"
)

// Block is one node of a page's content tree.
//
// Type and Content always agree: every BlockType has exactly one payload type,
// see NewContent. Children is only populated when HasChildren is true.
type Block struct {
	ID           string
	Type         BlockType
	HasChildren  bool
	CreatedAt    time.Time
	LastEditedAt time.Time
	Content      Content
	Children     []Block
}

// Content is the variant payload of a Block. The set of implementations is closed.
type Content interface {
	content()
}

// Paragraph is the payload of paragraph blocks.
type Paragraph struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

// Heading is the payload of heading_1, heading_2 and heading_3 blocks.
type Heading struct {
	RichText     []RichText `json:"rich_text"`
	Color        string     `json:"color,omitempty"`
	IsToggleable bool       `json:"is_toggleable"`
}

// ListItem is the payload of bulleted and numbered list items.
type ListItem struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

// ToDo is the payload of to_do blocks.
type ToDo struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
	Color    string     `json:"color,omitempty"`
}

// Toggle is the payload of toggle blocks.
type Toggle struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

// Quote is the payload of quote blocks.
type Quote struct {
	RichText []RichText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

// Code is the payload of code blocks.
type Code struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language"`
	Caption  []RichText `json:"caption,omitempty"`
}

// FileObject is a Notion file reference: either hosted by Notion (File, with
// an expiring URL) or external.
type FileObject struct {
	Type     string        `json:"type"`
	External *ExternalFile `json:"external,omitempty"`
	File     *HostedFile   `json:"file,omitempty"`
	Caption  []RichText    `json:"caption,omitempty"`
	Name     string        `json:"name,omitempty"`
}

// ExternalFile is a file living outside Notion.
type ExternalFile struct {
	URL string `json:"url"`
}

// HostedFile is a Notion-hosted file.
type HostedFile struct {
	URL        string     `json:"url"`
	ExpiryTime *time.Time `json:"expiry_time,omitempty"`
}

// URL returns the reference's download URL.
func (f FileObject) URL() string {
	switch {
	case f.Type == "external" && f.External != nil:
		return f.External.URL
	case f.File != nil:
		return f.File.URL
	case f.External != nil:
		return f.External.URL
	}
	return ""
}

// Image is the payload of image blocks. Size, Placeholder and BlurHash are
// filled in by enrichment.
type Image struct {
	FileObject
	Size        *ImageSize `json:"size,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	BlurHash    string     `json:"blur_hash,omitempty"`
	MirrorURL   string     `json:"mirror_url,omitempty"`
}

// ImageSize is the pixel size of the original image.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SourceURL prefers the mirrored copy over the Notion URL.
func (i Image) SourceURL() string {
	if i.MirrorURL != "" {
		return i.MirrorURL
	}
	return i.URL()
}

// File is the payload of file blocks.
type File struct {
	FileObject
}

// Bookmark is the payload of bookmark blocks.
type Bookmark struct {
	URL     string     `json:"url"`
	Caption []RichText `json:"caption,omitempty"`
}

// Icon is a callout or page icon.
type Icon struct {
	Type     string        `json:"type"`
	Emoji    string        `json:"emoji,omitempty"`
	External *ExternalFile `json:"external,omitempty"`
	File     *HostedFile   `json:"file,omitempty"`
}

// Callout is the payload of callout blocks.
type Callout struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon,omitempty"`
	Color    string     `json:"color,omitempty"`
}

// ColumnList is the payload of column_list blocks.
type ColumnList struct{}

// Column is the payload of column blocks.
type Column struct{}

// Divider is the payload of divider blocks.
type Divider struct{}

// ChildPage is the payload of child_page blocks.
type ChildPage struct {
	Title string `json:"title"`
}

// Unsupported stands in for any block type that is not modeled. Kind keeps
// the type reported by Notion.
type Unsupported struct {
	Kind string `json:"kind,omitempty"`
}

// List is the payload of the synthetic bulleted_list and numbered_list wrappers.
type List struct{}

func (*Paragraph) content()   {}
func (*Heading) content()     {}
func (*ListItem) content()    {}
func (*ToDo) content()        {}
func (*Toggle) content()      {}
func (*Quote) content()       {}
func (*Code) content()        {}
func (*Image) content()       {}
func (*File) content()        {}
func (*Bookmark) content()    {}
func (*Callout) content()     {}
func (*ColumnList) content()  {}
func (*Column) content()      {}
func (*Divider) content()     {}
func (*ChildPage) content()   {}
func (*Unsupported) content() {}
func (*List) content()        {}

// NewContent returns an empty payload for t. Types that are not modeled map
// to BlockUnsupported with the original type kept in Unsupported.Kind.
func NewContent(t BlockType) (BlockType, Content) {
	switch t {
	case BlockParagraph:
		return t, &Paragraph{}
	case BlockHeading1, BlockHeading2, BlockHeading3:
		return t, &Heading{}
	case BlockBulletedListItem, BlockNumberedListItem:
		return t, &ListItem{}
	case BlockToDo:
		return t, &ToDo{}
	case BlockToggle:
		return t, &Toggle{}
	case BlockQuote:
		return t, &Quote{}
	case BlockCode:
		return t, &Code{}
	case BlockImage:
		return t, &Image{}
	case BlockFile:
		return t, &File{}
	case BlockBookmark:
		return t, &Bookmark{}
	case BlockCallout:
		return t, &Callout{}
	case BlockColumnList:
		return t, &ColumnList{}
	case BlockColumn:
		return t, &Column{}
	case BlockDivider:
		return t, &Divider{}
	case BlockChildPage:
		return t, &ChildPage{}
	case BlockBulletedList, BlockNumberedList:
		return t, &List{}
	case BlockUnsupported:
		return t, &Unsupported{}
	default:
		return BlockUnsupported, &Unsupported{Kind: string(t)}
	}
}

// IsListItem reports whether the block is a bulleted or numbered list item.
func (b Block) IsListItem() bool {
	return b.Type == BlockBulletedListItem || b.Type == BlockNumberedListItem
}

// HeadingLevel returns 1-3 for headings and 0 otherwise.
func (b Block) HeadingLevel() int {
	switch b.Type {
	case BlockHeading1:
		return 1
	case BlockHeading2:
		return 2
	case BlockHeading3:
		return 3
	}
	return 0
}

// RichText returns the primary text of the block, if its variant has one.
func (b Block) RichText() []RichText {
	switch c := b.Content.(type) {
	case *Paragraph:
		return c.RichText
	case *Heading:
		return c.RichText
	case *ListItem:
		return c.RichText
	case *ToDo:
		return c.RichText
	case *Toggle:
		return c.RichText
	case *Quote:
		return c.RichText
	case *Code:
		return c.RichText
	case *Callout:
		return c.RichText
	}
	return nil
}

// Walk calls fn for every block of the tree in depth-first pre-order.
func Walk(blocks []Block, fn func(*Block)) {
	for i := range blocks {
		fn(&blocks[i])
		Walk(blocks[i].Children, fn)
	}
}
