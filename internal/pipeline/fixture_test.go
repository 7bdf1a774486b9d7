package pipeline

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"github.com/hassan/kotlinc/internal/config"
)

type fixture struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	Output string `yaml:"output"`
	Error  string `yaml:"error"`
}

type fixtureManifest struct {
	Fixtures []fixture `yaml:"fixtures"`
}

func loadFixtures(t *testing.T) []fixture {
	t.Helper()
	file, err := os.Open(filepath.Join("testdata", "fixtures.yaml"))
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	var manifest fixtureManifest
	if err := decoder.Decode(&manifest); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if len(manifest.Fixtures) == 0 {
		t.Fatal("manifest lists no fixtures")
	}
	return manifest.Fixtures
}

func readTestdata(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// diff renders the character-level difference between want and got.
func diff(want, got string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, false)
	return dmp.DiffPrettyText(dmp.DiffCleanupSemantic(diffs))
}

func TestFixtures(t *testing.T) {
	for _, opt := range []bool{false, true} {
		cfg := config.Default()
		cfg.Optimizer.Enabled = opt
		p := New(cfg, quietLogger())

		mode := "plain"
		if opt {
			mode = "optimized"
		}
		t.Run(mode, func(t *testing.T) {
			for _, fx := range loadFixtures(t) {
				fx := fx
				t.Run(fx.Name, func(t *testing.T) {
					src := readTestdata(t, fx.Source)
					var out strings.Builder
					err := p.Run(src, fx.Source, &out)

					if fx.Error != "" {
						if err == nil {
							t.Fatalf("Run() succeeded, want error containing %q", fx.Error)
						}
						if !strings.Contains(err.Error(), fx.Error) {
							t.Errorf("error = %q, want it to contain %q", err.Error(), fx.Error)
						}
					} else if err != nil {
						t.Fatalf("Run() error: %v", err)
					}

					want := ""
					if fx.Output != "" {
						want = readTestdata(t, fx.Output)
					}
					if got := out.String(); got != want {
						t.Errorf("output differs from %s:\n%s", fx.Output, diff(want, got))
					}
				})
			}
		})
	}
}

// TestFixtures_RoundTrip checks that printing is a fixed point of
// parse and print for every valid fixture.
func TestFixtures_RoundTrip(t *testing.T) {
	p := New(nil, quietLogger())
	for _, fx := range loadFixtures(t) {
		if fx.Error != "" && fx.Output == "" {
			continue
		}
		fx := fx
		t.Run(fx.Name, func(t *testing.T) {
			first, err := p.Format(readTestdata(t, fx.Source), fx.Source)
			if err != nil {
				t.Fatalf("Format() error: %v", err)
			}
			second, err := p.Format(first, fx.Source)
			if err != nil {
				t.Fatalf("Format(printed) error: %v\n%s", err, first)
			}
			if first != second {
				t.Errorf("printing is not stable:\n%s", diff(first, second))
			}
			if _, err := p.Check(first, fx.Source); err != nil {
				t.Errorf("printed form does not check: %v", err)
			}
		})
	}
}
