package check

import (
	"context"

	"github.com/nao1215/lorcheck/internal/browser"
	"github.com/nao1215/lorcheck/internal/config"
)

// Header selectors.
var (
	selLogo      = browser.CSS("#sitetitle a")
	selMenu      = browser.Class("menu")
	selMenuItems = browser.CSS("ul > li")
	selAuthLinks = browser.CSS("#loginGreating > div > a")
)

// HeaderRegion returns the checks of the page header (#hd).
func HeaderRegion() Region {
	return Region{
		Name:   config.RegionHeader,
		RootID: "hd",
		Checks: []Check{
			{
				Name:        "hd_structure",
				Description: "site logo and main menu are present",
				Run:         checkHeaderStructure,
			},
			{
				Name:        "logo_text_and_href",
				Description: "logo shows the site name and links to the site root",
				Run:         checkLogo,
			},
			{
				Name:        "menu_structure",
				Description: "main menu has exactly the expected entries",
				Run:         checkMenu,
			},
			{
				Name:        "authorization_menu",
				Description: "registration and login links are shown",
				Run:         checkAuthorizationMenu,
			},
		},
	}
}

func checkHeaderStructure(ctx context.Context, s *Scope) error {
	if _, err := find(ctx, s.Root, selLogo); err != nil {
		return err
	}
	if _, err := find(ctx, s.Root, selMenu); err != nil {
		return err
	}
	return nil
}

func checkLogo(ctx context.Context, s *Scope) error {
	logo, err := find(ctx, s.Root, selLogo)
	if err != nil {
		return err
	}

	text, err := logo.Text(ctx)
	if err != nil {
		return err
	}
	if err := assertEqual("logo text", s.Expect.Header.LogoText, text); err != nil {
		return err
	}

	href, err := attribute(ctx, logo, "href")
	if err != nil {
		return err
	}
	return assertEqual("logo href", s.SiteRoot, href)
}

func checkMenu(ctx context.Context, s *Scope) error {
	menu, err := find(ctx, s.Root, selMenu)
	if err != nil {
		return err
	}

	items, err := findAll(ctx, menu, selMenuItems)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return assertf("menu has no entries")
	}

	labels, err := texts(ctx, items)
	if err != nil {
		return err
	}
	return assertSet("menu entries", s.Expect.Header.Menu, labels)
}

func checkAuthorizationMenu(ctx context.Context, s *Scope) error {
	links, err := findAll(ctx, s.Root, selAuthLinks)
	if err != nil {
		return err
	}

	labels, err := texts(ctx, links)
	if err != nil {
		return err
	}
	return assertSet("authorization links", s.Expect.Header.Authorization, labels)
}
