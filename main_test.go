package main

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"github.com/footstore/footstore/frontend/frontserver/components/footer"
	"github.com/go-test/deep"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	os.Exit(m.Run())
}

const testConfig = `
listenAddress = "127.0.0.1:9000"
siteName = "FootStore"

[footer.copyright]
year = 2025
holder = "FootStore"
notice = "Todos los derechos reservados."

[[footer.socials]]
name = "facebook"
url = "https://www.facebook.com/footstore"
icon = "/utils/facebook.svg"

[[footer.socials]]
name = "instagram"
url = "https://www.instagram.com/footstore"
icon = "/utils/instagram.svg"
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir, err := ioutil.TempDir("", "footstore")
	if err != nil {
		t.Fatal("Failed to make temp dir:", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "config.toml")
	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal("Failed to write config:", err)
	}

	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTestConfig(t, testConfig)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal("Failed to load config:", err)
	}

	if cfg.ListenAddress != "127.0.0.1:9000" {
		t.Fatal("Unexpected listen address:", cfg.ListenAddress)
	}

	var expect = []footer.Social{
		{Name: "facebook", URL: "https://www.facebook.com/footstore", Icon: "/utils/facebook.svg"},
		{Name: "instagram", URL: "https://www.instagram.com/footstore", Icon: "/utils/instagram.svg"},
	}

	if diff := deep.Equal(expect, cfg.Footer.Socials); diff != nil {
		t.Fatal("Unexpected socials:", diff)
	}

	if cfg.Footer.Copyright.Year != 2025 {
		t.Fatal("Unexpected year:", cfg.Footer.Copyright.Year)
	}

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := loadConfig(filepath.Join(filepath.Dir(path), "nothing*.toml"))
		if err != nil {
			t.Fatal("Failed to load defaults:", err)
		}

		if diff := deep.Equal(NewConfig().Footer, cfg.Footer); diff != nil {
			t.Fatal("Defaults changed:", diff)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		path := writeTestConfig(t, `
[[footer.socials]]
name = "facebook"
url = "facebook.com"
icon = "/utils/facebook.svg"
`)
		if _, err := loadConfig(path); err == nil {
			t.Fatal("Expected invalid URL to fail")
		}
	})
}

func TestRenderFooter(t *testing.T) {
	cfg := NewConfig()

	var fragment bytes.Buffer
	if err := renderFooter(&fragment, cfg.FrontConfig, false); err != nil {
		t.Fatal("Failed to render fragment:", err)
	}

	if strings.Contains(fragment.String(), "<html") {
		t.Fatal("Fragment contains a document:", fragment.String())
	}

	var document bytes.Buffer
	if err := renderFooter(&document, cfg.FrontConfig, true); err != nil {
		t.Fatal("Failed to render document:", err)
	}

	doc, err := goquery.NewDocumentFromReader(&document)
	if err != nil {
		t.Fatal("Failed to parse document:", err)
	}

	if lang, _ := doc.Find("html").Attr("lang"); lang != "es" {
		t.Fatal("Unexpected lang:", lang)
	}

	if title := doc.Find("title").Text(); title != "FootStore" {
		t.Fatal("Unexpected title:", title)
	}

	if n := doc.Find("body footer a").Length(); n != 3 {
		t.Fatal("Unexpected anchor count:", n)
	}
}

func TestHandler(t *testing.T) {
	h, err := newHandler(NewConfig().FrontConfig)
	if err != nil {
		t.Fatal("Failed to create handler:", err)
	}

	t.Run("Healthz", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))

		if w.Code != http.StatusOK || w.Body.String() != "ok" {
			t.Fatalf("Unexpected response %d: %q", w.Code, w.Body.String())
		}
	})

	t.Run("Brotli", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/fragments/footer", nil)
		r.Header.Set("Accept-Encoding", "br")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		if enc := w.Header().Get("Content-Encoding"); enc != "br" {
			t.Fatalf("Expected br encoding, got %q", enc)
		}

		b, err := ioutil.ReadAll(brotli.NewReader(w.Body))
		if err != nil {
			t.Fatal("Failed to decode brotli body:", err)
		}

		if !bytes.Contains(b, []byte("© 2024 FootStore. Todos los derechos reservados.")) {
			t.Fatalf("Decoded body is missing the notice: %s", b)
		}
	})

	t.Run("Gzip", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/fragments/footer", nil)
		r.Header.Set("Accept-Encoding", "gzip")

		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		if enc := w.Header().Get("Content-Encoding"); enc != "gzip" {
			t.Fatalf("Expected gzip encoding, got %q", enc)
		}
	})
}
