// Package footer renders the storefront footer: the copyright notice and the
// social network icon links, pinned to the bottom of the viewport by its own
// style block.
package footer

import (
	"fmt"
	"html/template"
	"io"
	"net/url"
	"time"

	"github.com/footstore/footstore/frontend/frontserver/render"
	"github.com/pkg/errors"

	_ "embed"
)

var (
	//go:embed footer.html
	footerHTML string
	//go:embed footer.css
	footerCSS string
)

var tmpl = render.BuildPage("footer", render.Page{
	Template: footerHTML,
})

// Component embeds the pre-rendered footer into a page through
// {{ template "footer" . }}. The page's context must embed render.CommonCtx.
var Component = render.Component{
	Template: "{{ .Footer }}",
}

// Social is a single icon link. Name is also used as the image's alt text.
type Social struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
	Icon string `toml:"icon"`
}

type Copyright struct {
	// Year is the year printed in the notice. Zero means the current year.
	Year   int    `toml:"year"`
	Holder string `toml:"holder"`
	Notice string `toml:"notice"`
}

// Text formats the copyright line. now is only used when Year is zero.
func (c Copyright) Text(now time.Time) string {
	year := c.Year
	if year == 0 {
		year = now.Year()
	}

	s := fmt.Sprintf("© %d %s.", year, c.Holder)
	if c.Notice != "" {
		s += " " + c.Notice
	}
	return s
}

type Config struct {
	Copyright Copyright `toml:"copyright"`
	Socials   []Social  `toml:"socials"`
}

func NewConfig() Config {
	return Config{
		Copyright: Copyright{
			Year:   2024,
			Holder: "FootStore",
			Notice: "Todos los derechos reservados.",
		},
		Socials: []Social{
			{"facebook", "https://www.facebook.com/", "../utils/facebook.svg"},
			{"twitter", "https://twitter.com/", "../utils/twitter.svg"},
			{"instagram", "https://www.instagram.com/", "../utils/instagram.svg"},
		},
	}
}

func (c *Config) Validate() error {
	if c.Copyright.Holder == "" {
		return errors.New("missing `copyright.holder' value")
	}

	if c.Copyright.Year < 0 {
		return fmt.Errorf("invalid copyright year %d", c.Copyright.Year)
	}

	var names = make(map[string]struct{}, len(c.Socials))

	for i, social := range c.Socials {
		if social.Name == "" {
			return fmt.Errorf("social %d: missing `name' value", i)
		}

		if _, dup := names[social.Name]; dup {
			return fmt.Errorf("social %q: duplicate name", social.Name)
		}
		names[social.Name] = struct{}{}

		if social.Icon == "" {
			return fmt.Errorf("social %q: missing `icon' value", social.Name)
		}

		u, err := url.Parse(social.URL)
		if err != nil {
			return errors.Wrapf(err, "social %q: invalid url", social.Name)
		}

		if u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("social %q: url %q is not an absolute http(s) URL",
				social.Name, social.URL)
		}
	}

	return nil
}

type renderCtx struct {
	CSS       template.CSS
	Copyright string
	Socials   []Social
}

// Fragment is a rendered footer. Its output never changes after New.
type Fragment struct {
	html template.HTML
}

// New validates the config and renders the footer once.
func New(cfg Config) (*Fragment, error) {
	return newAt(cfg, time.Now())
}

func newAt(cfg Config, now time.Time) (*Fragment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid footer config")
	}

	css, err := render.MinifyCSS(footerCSS)
	if err != nil {
		return nil, err
	}

	h, err := tmpl.Render(renderCtx{
		CSS:       template.CSS(css),
		Copyright: cfg.Copyright.Text(now),
		Socials:   cfg.Socials,
	})
	if err != nil {
		return nil, err
	}

	return &Fragment{h}, nil
}

// HTML returns the fragment for embedding into other templates.
func (f *Fragment) HTML() template.HTML {
	return f.html
}

// Bytes returns a copy of the rendered fragment.
func (f *Fragment) Bytes() []byte {
	return []byte(f.html)
}

// WriteTo writes the fragment into w.
func (f *Fragment) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, string(f.html))
	return int64(n), err
}
