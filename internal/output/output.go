// Package output provides styled terminal output helpers (success, error,
// warning, queue formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/fieldops/fieldsync/internal/models"
)

var (
	// Styles
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStyles = map[models.MutationStatus]lipgloss.Style{
		models.StatusPending:  lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		models.StatusSyncing:  lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
		models.StatusSynced:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.StatusConflict: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.StatusFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
)

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Println(fmt.Sprintf(format, args...))
}

// JSON outputs data as JSON
func JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// FormatStatus formats a mutation status with color
func FormatStatus(s models.MutationStatus) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return style.Render(fmt.Sprintf("[%s]", s))
}

// FormatMutation renders one queue row for listings
func FormatMutation(m *models.PendingMutation) string {
	line := fmt.Sprintf("#%-4d %s %-6s %-7s %s  %s",
		m.ID, FormatStatus(m.Status), m.Method, m.EntityType, m.URL,
		subtleStyle.Render(FormatTimeAgo(m.CreatedAt)))
	if m.RetryCount > 0 {
		line += subtleStyle.Render(fmt.Sprintf("  retries:%d", m.RetryCount))
	}
	if m.Error != "" {
		line += "\n      " + errorStyle.Render(m.Error)
	}
	return line
}

// FormatTimeAgo renders a timestamp relative to now
func FormatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Format("2006-01-02")
	}
}

// TerminalWidth returns the current terminal width or a fallback when
// unavailable.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = 80
	}

	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}

	if cols := os.Getenv("COLUMNS"); cols != "" {
		if parsed, err := strconv.Atoi(cols); err == nil && parsed > 0 {
			return parsed
		}
	}

	return fallback
}

// Truncate shortens s to fit width, appending an ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 3 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
