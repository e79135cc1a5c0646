package data

import "time"

// Availability is the stock state of a product.
type Availability string

const (
	InStock      Availability = "in-stock"
	OutOfStock   Availability = "out-of-stock"
	PreOrder     Availability = "pre-order"
	Discontinued Availability = "discontinued"
)

// PostStatus is the editorial state of a blog post. The site only reads published posts.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

// Reference points at another CMS document or asset.
type Reference struct {
	Ref string `json:"_ref" firestore:"ref"`
}

// Image is a CMS image field. URL is set for images that do not live in the
// CMS asset pipeline (e.g. documents from the secondary database).
type Image struct {
	Asset Reference `json:"asset" firestore:"asset"`
	Alt   string    `json:"alt,omitempty" firestore:"alt"`
	URL   string    `json:"url,omitempty" firestore:"url"`
}

// HealthInfo carries the product health metadata shown on product cards.
type HealthInfo struct {
	Benefits []string `json:"benefits,omitempty" firestore:"benefits"`
	Dosage   string   `json:"dosage,omitempty" firestore:"dosage"`
	Warnings string   `json:"warnings,omitempty" firestore:"warnings"`
}

// Category groups products, posts and FAQs.
type Category struct {
	ID          string `json:"_id" db:"id" firestore:"-"`
	Title       string `json:"title" db:"title" firestore:"title"`
	Slug        string `json:"slug" db:"slug" firestore:"slug"`
	Description string `json:"description,omitempty" db:"description" firestore:"description"`
}

// Product is a shop item.
type Product struct {
	ID           string       `json:"_id" db:"id" firestore:"-"`
	Name         string       `json:"name" db:"name" firestore:"name"`
	Slug         string       `json:"slug" db:"slug" firestore:"slug"`
	Description  string       `json:"description" db:"description" firestore:"description"`
	Images       []Image      `json:"images,omitempty" db:"-" firestore:"images"`
	ImageURL     string       `json:"imageUrl,omitempty" db:"image_url" firestore:"imageUrl"`
	Category     string       `json:"category,omitempty" db:"category" firestore:"category"`
	Availability Availability `json:"availability" db:"availability" firestore:"availability"`
	Price        float64      `json:"price" db:"price" firestore:"price"`
	Featured     bool         `json:"featured" db:"featured" firestore:"featured"`
	Health       HealthInfo   `json:"healthInfo" db:"-" firestore:"healthInfo"`
	UpdatedAt    time.Time    `json:"_updatedAt" db:"updated_at" firestore:"updatedAt"`
}

// Available reports whether the product can be ordered.
func (p *Product) Available() bool {
	return p.Availability == InStock || p.Availability == PreOrder
}

// BlogPost is an article. Body is portable text from the CMS; Content is the
// plain/markdown body used by posts stored in the secondary database.
type BlogPost struct {
	ID          string     `json:"_id" db:"id" firestore:"-"`
	Title       string     `json:"title" db:"title" firestore:"title"`
	Slug        string     `json:"slug" db:"slug" firestore:"slug"`
	Excerpt     string     `json:"excerpt,omitempty" db:"excerpt" firestore:"excerpt"`
	Body        Blocks     `json:"body,omitempty" db:"-" firestore:"-"`
	Content     string     `json:"content,omitempty" db:"content" firestore:"content"`
	Author      string     `json:"author,omitempty" db:"author" firestore:"author"`
	Categories  []string   `json:"categories,omitempty" db:"-" firestore:"categories"`
	MainImage   *Image     `json:"mainImage,omitempty" db:"-" firestore:"mainImage"`
	Status      PostStatus `json:"status" db:"status" firestore:"status"`
	Featured    bool       `json:"featured" db:"featured" firestore:"featured"`
	PublishedAt time.Time  `json:"publishedAt" db:"published_at" firestore:"publishedAt"`
}

// SEO holds per-document search metadata.
type SEO struct {
	MetaTitle       string   `json:"metaTitle,omitempty"`
	MetaDescription string   `json:"metaDescription,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
	NoIndex         bool     `json:"noIndex,omitempty"`
}

// Hero is the banner at the top of a business page.
type Hero struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading,omitempty"`
	Image      *Image `json:"image,omitempty"`
	CTALabel   string `json:"ctaLabel,omitempty"`
	CTAURL     string `json:"ctaUrl,omitempty"`
}

// Section is one content block of a business page.
type Section struct {
	Key     string `json:"_key"`
	Heading string `json:"heading"`
	Body    Blocks `json:"body,omitempty"`
	Image   *Image `json:"image,omitempty"`
}

// BusinessPage is a CMS-authored landing page (wholesale, about, contact...).
type BusinessPage struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Hero      Hero      `json:"hero"`
	Sections  []Section `json:"sections,omitempty"`
	SEO       SEO       `json:"seo"`
	UpdatedAt time.Time `json:"_updatedAt"`
}

// TutorialStep is one step of a grow guide. Content is markdown.
type TutorialStep struct {
	Key     string   `json:"_key"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Image   *Image   `json:"image,omitempty"`
	Tips    []string `json:"tips,omitempty"`
}

// TutorialGuide is a multi-step guide.
type TutorialGuide struct {
	ID            string         `json:"_id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Difficulty    string         `json:"difficulty,omitempty"`
	EstimatedTime string         `json:"estimatedTime,omitempty"`
	Description   string         `json:"description,omitempty"`
	Steps         []TutorialStep `json:"steps"`
	UpdatedAt     time.Time      `json:"_updatedAt"`
}

// FAQ is a question with its answer. The answer is either portable text
// (AnswerBlocks) or a markdown string (Answer).
type FAQ struct {
	ID           string `json:"_id"`
	Question     string `json:"question"`
	Answer       string `json:"answer,omitempty"`
	AnswerBlocks Blocks `json:"answerBlocks,omitempty"`
	Category     string `json:"category"`
	Order        int    `json:"order"`
	Helpful      int    `json:"helpful"`
	NotHelpful   int    `json:"notHelpful"`
}

// FAQRating is a visitor's vote on an FAQ.
type FAQRating struct {
	ID        string    `db:"id" firestore:"-"`
	FAQID     string    `db:"faq_id" firestore:"faqId"`
	Helpful   bool      `db:"helpful" firestore:"helpful"`
	CreatedAt time.Time `db:"created_at" firestore:"createdAt"`
}

// PageAnalytics counts views of a page.
type PageAnalytics struct {
	Page       string    `json:"page" db:"page" firestore:"page"`
	Views      int64     `json:"views" db:"views" firestore:"views"`
	LastViewed time.Time `json:"lastViewed" db:"last_viewed" firestore:"lastViewed"`
}

// UserProfile is a document of the users collection managed by the admin tools.
type UserProfile struct {
	UID         string                 `firestore:"uid"`
	Email       string                 `firestore:"email"`
	DisplayName string                 `firestore:"displayName"`
	Role        string                 `firestore:"role"`
	CreatedAt   time.Time              `firestore:"createdAt"`
	UpdatedAt   time.Time              `firestore:"updatedAt"`
	Preferences map[string]interface{} `firestore:"preferences"`
}

// Span is an inline run of text inside a portable text block.
type Span struct {
	Key   string   `json:"_key,omitempty"`
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// MarkDef defines an annotation (e.g. a link) referenced from Span.Marks.
type MarkDef struct {
	Key  string `json:"_key"`
	Type string `json:"_type"`
	Href string `json:"href,omitempty"`
}

// Block is a portable text block. Image blocks carry Asset and Alt instead of children.
type Block struct {
	Key      string    `json:"_key,omitempty"`
	Type     string    `json:"_type"`
	Style    string    `json:"style,omitempty"`
	Children []Span    `json:"children,omitempty"`
	MarkDefs []MarkDef `json:"markDefs,omitempty"`
	ListItem string    `json:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"`
	Asset    Reference `json:"asset,omitempty"`
	Alt      string    `json:"alt,omitempty"`
}

// Blocks is a portable text document.
type Blocks []Block

// PlainText flattens the blocks into text, one paragraph per line.
func (b Blocks) PlainText() string {
	var out []byte
	for i, block := range b {
		if block.Type != "block" {
			continue
		}
		if i > 0 && len(out) > 0 {
			out = append(out, '\n')
		}
		for _, s := range block.Children {
			out = append(out, s.Text...)
		}
	}
	return string(out)
}
