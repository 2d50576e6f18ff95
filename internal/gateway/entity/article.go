package entity

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryTutorial          Category = "Tutorial"
	CategoryCaseStudy         Category = "Case Study"
	CategoryToolReview        Category = "Tool Review"
	CategoryPromptEngineering Category = "Prompt Engineering"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryTutorial,
	CategoryCaseStudy,
	CategoryToolReview,
	CategoryPromptEngineering,
}

// ParseCategory matches case-insensitively. Blank input yields the default.
func ParseCategory(raw string) (Category, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return CategoryTutorial, nil
	}
	for _, c := range Categories {
		if strings.EqualFold(string(c), raw) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// View is a presentation router state.
type View string

const (
	ViewFeed          View = "feed"
	ViewOptimizer     View = "optimizer"
	ViewArticleDetail View = "article-detail"
	ViewAbout         View = "about"
	ViewEditor        View = "editor"
)

var Views = []View{ViewFeed, ViewOptimizer, ViewArticleDetail, ViewAbout, ViewEditor}

type ArticleID string

func NormalizeArticleID(raw string) ArticleID {
	return ArticleID(strings.TrimSpace(raw))
}

func (id ArticleID) String() string {
	return strings.TrimSpace(string(id))
}

func (id ArticleID) IsZero() bool {
	return id.String() == ""
}

// Article is one feed entry. Date is YYYY-MM-DD.
type Article struct {
	ID       ArticleID `json:"id"`
	Title    string    `json:"title"`
	Excerpt  string    `json:"excerpt"`
	Content  string    `json:"content"`
	Category Category  `json:"category"`
	Author   string    `json:"author"`
	Date     string    `json:"date"`
	ImageURL string    `json:"imageUrl"`
	VideoURL string    `json:"videoUrl,omitempty"`
}
