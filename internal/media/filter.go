package media

import (
	"fmt"
	"strings"
)

// buildFilterGraph produces the video filter chain for a vertical render:
// scale the artwork to fit, pad to the exact frame, then burn in captions.
func buildFilterGraph(width, height int, captionsPath string, style StyleOverride) string {
	var b strings.Builder
	fmt.Fprintf(&b, "scale=%d:%d:force_original_aspect_ratio=decrease,", width, height)
	fmt.Fprintf(&b, "pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black,", width, height)
	fmt.Fprintf(&b, "subtitles='%s'", escapeFilterPath(captionsPath))
	if force := forceStyle(style); force != "" {
		fmt.Fprintf(&b, ":force_style='%s'", force)
	}
	return b.String()
}

func forceStyle(style StyleOverride) string {
	parts := make([]string, 0, 3)
	if style.FontSize > 0 {
		parts = append(parts, fmt.Sprintf("FontSize=%d", style.FontSize))
	}
	if style.Alignment > 0 {
		parts = append(parts, fmt.Sprintf("Alignment=%d", style.Alignment))
	}
	if style.VerticalMargin > 0 {
		parts = append(parts, fmt.Sprintf("MarginV=%d", style.VerticalMargin))
	}
	return strings.Join(parts, ",")
}

// escapeFilterPath escapes a filename for use inside a quoted ffmpeg filter
// argument. Backslashes, quotes, and colons are significant to the filter
// graph parser.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
	)
	return replacer.Replace(path)
}
