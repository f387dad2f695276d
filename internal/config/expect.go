package config

// Expectations is the literal expectation set the page is pinned to.
// Each region has its own block; zero values in a config file keep the
// compiled-in defaults.
type Expectations struct {
	Header HeaderExpectations `yaml:"header,omitempty"`
	Body   BodyExpectations   `yaml:"body,omitempty"`
	Footer FooterExpectations `yaml:"footer,omitempty"`
}

// HeaderExpectations covers the "hd" region.
type HeaderExpectations struct {
	// LogoText is the visible text of the site title link.
	LogoText string `yaml:"logoText,omitempty"`

	// Menu is the set of main menu labels.
	Menu []string `yaml:"menu,omitempty"`

	// Authorization is the set of register/login link labels.
	Authorization []string `yaml:"authorization,omitempty"`
}

// BodyExpectations covers the "bd" region.
type BodyExpectations struct {
	// NewsCount is the exact number of news items on the front page.
	NewsCount int `yaml:"newsCount,omitempty"`

	// BoxletCount is the exact number of boxlets in the aside.
	BoxletCount int `yaml:"boxletCount,omitempty"`

	// Buttons is the set of labels of the news navigation links.
	Buttons []string `yaml:"buttons,omitempty"`

	// AdditionalLinks is the set of paragraph texts under the news block.
	AdditionalLinks []string `yaml:"additionalLinks,omitempty"`

	// ProtectionHref is the link of the first aside banner.
	ProtectionHref string `yaml:"protectionHref,omitempty"`
}

// FooterExpectations covers the "ft" region.
type FooterExpectations struct {
	// Info lists substrings the footer info block must contain.
	Info []string `yaml:"info,omitempty"`
}

// DefaultExpectations returns the expectation set for www.linux.org.ru.
func DefaultExpectations() Expectations {
	return Expectations{
		Header: HeaderExpectations{
			LogoText: "LINUX.ORG.RU",
			Menu: []string{
				"Новости",
				"Галерея",
				"Статьи",
				"Форум",
				"Трекер",
				"Поиск",
			},
			Authorization: []string{"Регистрация", "Вход"},
		},
		Body: BodyExpectations{
			NewsCount:   5,
			BoxletCount: 5,
			Buttons: []string{
				"Добавить новость",
				"Все новости",
				"Неподтвержденные новости",
			},
			AdditionalLinks: []string{
				"RSS-подписка на новости",
				"Канал в Telegram",
			},
			ProtectionHref: "http://qrator.net/",
		},
		Footer: FooterExpectations{
			Info: []string{
				"О Сервере",
				"Правила форума",
				"Разработка и поддержка — Максим Валянский 1998–2023",
				"Сервер для сайта предоставлен «ITTelo»",
				"Размещение сервера и подключение к сети Интернет осуществляется компанией «Selectel».",
			},
		},
	}
}

// Merge returns e with every non-zero field of override applied on top.
// Lists are replaced, not appended. A zero count keeps the default.
func (e Expectations) Merge(override Expectations) Expectations {
	result := e

	if override.Header.LogoText != "" {
		result.Header.LogoText = override.Header.LogoText
	}
	if len(override.Header.Menu) > 0 {
		result.Header.Menu = override.Header.Menu
	}
	if len(override.Header.Authorization) > 0 {
		result.Header.Authorization = override.Header.Authorization
	}

	if override.Body.NewsCount > 0 {
		result.Body.NewsCount = override.Body.NewsCount
	}
	if override.Body.BoxletCount > 0 {
		result.Body.BoxletCount = override.Body.BoxletCount
	}
	if len(override.Body.Buttons) > 0 {
		result.Body.Buttons = override.Body.Buttons
	}
	if len(override.Body.AdditionalLinks) > 0 {
		result.Body.AdditionalLinks = override.Body.AdditionalLinks
	}
	if override.Body.ProtectionHref != "" {
		result.Body.ProtectionHref = override.Body.ProtectionHref
	}

	if len(override.Footer.Info) > 0 {
		result.Footer.Info = override.Footer.Info
	}

	return result
}
