package info

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/agenda/pkg/config"
)

func TestInfoPrintsPaths(t *testing.T) {
	color.NoColor = true
	t.Setenv("AGENDA_CONFIG_PATH", "")
	out := &bytes.Buffer{}
	n := Info{
		Config: &config.Config{
			APIURL:          "https://agenda.example.com/api",
			Timezone:        "UTC",
			CachePath:       "/tmp/agenda/cache",
			JournalPath:     "/tmp/agenda/journal.db",
			RefreshInterval: 5 * time.Minute,
		},
		Out: out,
	}
	if err := n.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"AGENDA_CONFIG_PATH env var not set", "https://agenda.example.com/api", "/tmp/agenda/cache", "5m0s", "no local cache"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
