package telegram

import (
	"fmt"
	"strings"
	"time"

	"golang-dex-token-analyzer/internal/dto"
)

// MaxMessageLength leaves a little headroom under Telegram's 4096 limit.
const MaxMessageLength = 4090

// FormatBatchSummaryForTelegram renders a batch report as one or more Markdown messages,
// each at most MaxMessageLength long. BUY picks are listed after the counters.
func FormatBatchSummaryForTelegram(report *dto.BatchReport) []string {
	if report == nil {
		return []string{"No batch report available."}
	}

	var messages []string
	var current strings.Builder
	part := 1

	startNewPart := func() {
		current.Reset()
		if part == 1 {
			current.WriteString(formatHeader(report))
		} else {
			current.WriteString(fmt.Sprintf("---*BUY picks, part %d*---\n\n", part))
		}
	}
	startNewPart()

	picks := report.BuyPicks()
	if len(picks) == 0 {
		current.WriteString("No BUY recommendations in this run.\n")
	}

	for _, p := range picks {
		entry := formatPick(p)
		if current.Len()+len(entry) > MaxMessageLength {
			messages = append(messages, current.String())
			part++
			startNewPart()
		}
		current.WriteString(entry)
	}

	if current.Len() > 0 {
		messages = append(messages, current.String())
	}
	return messages
}

func formatHeader(report *dto.BatchReport) string {
	var sb strings.Builder
	sb.WriteString("📊 *DEX Token Update* 📊\n")
	if !report.FinishedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("🕒 %s UTC\n", report.FinishedAt.UTC().Format(time.DateTime)))
	}
	if report.Source != "" {
		sb.WriteString(fmt.Sprintf("🔎 Source: `%s`\n", escapeMarkdown(report.Source)))
	}
	sb.WriteString(fmt.Sprintf("📥 Fetched: %d\n", report.Fetched))
	sb.WriteString(fmt.Sprintf("✅ Updated: %d\n", report.Updated))
	sb.WriteString(fmt.Sprintf("⏭️ Skipped: %d\n", report.Skipped))
	sb.WriteString(fmt.Sprintf("❌ Failed: %d\n\n", report.Failed))
	return sb.String()
}

func formatPick(r dto.ItemResult) string {
	symbol := r.Symbol
	if symbol == "" {
		symbol = "UNK"
	}
	return fmt.Sprintf("🟢 *%s* `%s`\n", escapeMarkdown(symbol), r.PairAddress)
}

// escapeMarkdown escapes the characters legacy Markdown treats as markup.
func escapeMarkdown(s string) string {
	return strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[").Replace(s)
}
