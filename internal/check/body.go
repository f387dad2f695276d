package check

import (
	"context"
	"strings"

	"github.com/nao1215/lorcheck/internal/browser"
	"github.com/nao1215/lorcheck/internal/config"
)

// Body selectors.
var (
	selMainpage    = browser.ID("mainpage")
	selNews        = browser.ID("news")
	selBoxlets     = browser.ID("boxlets")
	selInterpage   = browser.ID("interpage")
	selNewsItem    = browser.Class("news")
	selMoreNews    = browser.CSS("#news>section ul")
	selNewsButtons = browser.CSS("#news>nav>a")
	selNewsFooter  = browser.CSS("#news>p")
	selAside       = browser.Tag("aside")
	selDiv         = browser.Tag("div")
	selLink        = browser.Tag("a")
	selBoxlet      = browser.Class("boxlet")
	selNewsNav     = browser.Class("nav")
)

// BodyRegion returns the checks of the page body (#bd).
func BodyRegion() Region {
	return Region{
		Name:   config.RegionBody,
		RootID: "bd",
		Checks: []Check{
			{
				Name:        "bd_structure",
				Description: "main page container is present",
				Run:         checkBodyStructure,
			},
			{
				Name:        "mainpage_structure",
				Description: "news column and boxlets column are present",
				Run:         checkMainpageStructure,
			},
			{
				Name:        "news",
				Description: "news column has the banner and the expected number of news",
				Run:         checkNews,
			},
			{
				Name:        "more_news_not_empty",
				Description: "older news list is not empty",
				Run:         checkMoreNews,
			},
			{
				Name:        "bd_buttons",
				Description: "news navigation has the expected links",
				Run:         checkNewsButtons,
			},
			{
				Name:        "additional_urls",
				Description: "RSS and Telegram links follow the news",
				Run:         checkAdditionalURLs,
			},
			{
				Name:        "aside",
				Description: "aside starts with the protection banner and has the expected boxlets",
				Run:         checkAside,
			},
			{
				Name:        "comments",
				Description: "every news links to its own comments",
				Run:         checkComments,
			},
		},
	}
}

func checkBodyStructure(ctx context.Context, s *Scope) error {
	_, err := find(ctx, s.Root, selMainpage)
	return err
}

func checkMainpageStructure(ctx context.Context, s *Scope) error {
	mainpage, err := find(ctx, s.Root, selMainpage)
	if err != nil {
		return err
	}
	if _, err := find(ctx, mainpage, selNews); err != nil {
		return err
	}
	if _, err := find(ctx, mainpage, selBoxlets); err != nil {
		return err
	}
	return nil
}

func checkNews(ctx context.Context, s *Scope) error {
	news, err := find(ctx, s.Root, selNews)
	if err != nil {
		return err
	}
	if _, err := find(ctx, news, selInterpage); err != nil {
		return err
	}

	items, err := findAll(ctx, news, selNewsItem)
	if err != nil {
		return err
	}
	return assertCount("news count", s.Expect.Body.NewsCount, len(items))
}

// checkMoreNews queries the whole document, not the region root.
func checkMoreNews(ctx context.Context, s *Scope) error {
	lists, err := findAll(ctx, s.Page, selMoreNews)
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		return assertf("no older news list matches %s", selMoreNews)
	}
	return nil
}

func checkNewsButtons(ctx context.Context, s *Scope) error {
	buttons, err := findAll(ctx, s.Root, selNewsButtons)
	if err != nil {
		return err
	}
	labels, err := texts(ctx, buttons)
	if err != nil {
		return err
	}
	return assertSet("news buttons", s.Expect.Body.Buttons, labels)
}

// checkAdditionalURLs queries the whole document, not the region root.
func checkAdditionalURLs(ctx context.Context, s *Scope) error {
	paragraphs, err := findAll(ctx, s.Page, selNewsFooter)
	if err != nil {
		return err
	}
	labels, err := texts(ctx, paragraphs)
	if err != nil {
		return err
	}
	return assertSet("additional links", s.Expect.Body.AdditionalLinks, labels)
}

func checkAside(ctx context.Context, s *Scope) error {
	aside, err := find(ctx, s.Root, selAside)
	if err != nil {
		return err
	}

	banner, err := find(ctx, aside, selDiv)
	if err != nil {
		return err
	}
	bannerLink, err := find(ctx, banner, selLink)
	if err != nil {
		return err
	}

	boxlets, err := findAll(ctx, aside, selBoxlet)
	if err != nil {
		return err
	}
	if err := assertCount("boxlet count", s.Expect.Body.BoxletCount, len(boxlets)); err != nil {
		return err
	}

	href, err := attribute(ctx, bannerLink, "href")
	if err != nil {
		return err
	}
	return assertEqual("protection banner href", s.Expect.Body.ProtectionHref, href)
}

func checkComments(ctx context.Context, s *Scope) error {
	news, err := find(ctx, s.Root, selNews)
	if err != nil {
		return err
	}
	items, err := findAll(ctx, news, selNewsItem)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return assertf("no news to check comments links on")
	}

	for i, item := range items {
		if err := checkCommentsLink(ctx, i, item); err != nil {
			return err
		}
	}
	return nil
}

// checkCommentsLink verifies that the comments link of one news item points
// at the comments anchor of that same item.
func checkCommentsLink(ctx context.Context, index int, item browser.Element) error {
	link, err := find(ctx, item, selLink)
	if err != nil {
		return err
	}
	href, err := attribute(ctx, link, "href")
	if err != nil {
		return err
	}
	newsID := NewsID(href)

	nav, err := find(ctx, item, selNewsNav)
	if err != nil {
		return err
	}
	navLink, err := find(ctx, nav, selLink)
	if err != nil {
		return err
	}
	commentsHref, err := attribute(ctx, navLink, "href")
	if err != nil {
		return err
	}

	if want := newsID + "#comments"; !strings.HasSuffix(commentsHref, want) {
		return assertf("news %d: comments link %q does not end with %q", index+1, commentsHref, want)
	}
	return nil
}

// NewsID returns the last path segment of a news link.
func NewsID(href string) string {
	return href[strings.LastIndex(href, "/")+1:]
}
