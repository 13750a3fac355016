package diag

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/fieldops/fieldsync/internal/store"
)

// ReportOptions controls what goes into a bug report.
type ReportOptions struct {
	AppVersion string
	Features   map[string]bool
	LogLimit   int // most recent debug entries to include; 0 means 100
}

// BugReport composes a flat text document from device info, the feature-flag
// snapshot and the most recent debug log entries.
func BugReport(s *store.Store, opts ReportOptions) (string, error) {
	var b strings.Builder

	hostname, _ := os.Hostname()

	b.WriteString("fieldsync bug report\n")
	b.WriteString("====================\n\n")
	fmt.Fprintf(&b, "generated:  %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "version:    %s\n", opts.AppVersion)
	fmt.Fprintf(&b, "os/arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&b, "hostname:   %s\n", hostname)

	b.WriteString("\nfeatures\n--------\n")
	if len(opts.Features) == 0 {
		b.WriteString("(none)\n")
	} else {
		names := make([]string, 0, len(opts.Features))
		for name := range opts.Features {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "%-24s %v\n", name, opts.Features[name])
		}
	}

	limit := opts.LogLimit
	if limit <= 0 {
		limit = 100
	}

	b.WriteString("\nrecent debug log\n----------------\n")
	entries, err := s.RecentDebugEntries(limit)
	if err != nil {
		return "", fmt.Errorf("read debug log: %w", err)
	}
	if len(entries) == 0 {
		b.WriteString("(empty)\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&b, "%s [%s/%s] %s", e.CreatedAt.UTC().Format(time.RFC3339), e.Category, e.Level, e.Message)
		if len(e.Data) > 0 {
			fmt.Fprintf(&b, " %s", string(e.Data))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}
