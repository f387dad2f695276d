package check

import (
	"context"

	"github.com/nao1215/lorcheck/internal/browser"
	"github.com/nao1215/lorcheck/internal/config"
)

// Footer selectors.
var (
	selBackButton = browser.ID("ft-back-button")
	selFooterInfo = browser.ID("ft-info")
)

// FooterRegion returns the checks of the page footer (#ft).
func FooterRegion() Region {
	return Region{
		Name:   config.RegionFooter,
		RootID: "ft",
		Checks: []Check{
			{
				Name:        "ft",
				Description: "back-to-top button and footer info are present",
				Run:         checkFooterStructure,
			},
			{
				Name:        "ft_info",
				Description: "footer info carries the expected notices",
				Run:         checkFooterInfo,
			},
			{
				Name:        "scroll_to_top",
				Description: "back-to-top button scrolls the page to the top",
				Run:         checkScrollToTop,
			},
		},
	}
}

func checkFooterStructure(ctx context.Context, s *Scope) error {
	if _, err := find(ctx, s.Root, selBackButton); err != nil {
		return err
	}
	if _, err := find(ctx, s.Root, selFooterInfo); err != nil {
		return err
	}
	return nil
}

func checkFooterInfo(ctx context.Context, s *Scope) error {
	info, err := find(ctx, s.Root, selFooterInfo)
	if err != nil {
		return err
	}
	text, err := info.Text(ctx)
	if err != nil {
		return err
	}
	return assertContains("footer info", text, s.Expect.Footer.Info)
}
