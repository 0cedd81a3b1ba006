// Package ui formats CLI output for gitseal commands.
//
// Formatters colorize text when the terminal supports it. When NO_COLOR is
// set or the terminal has no color support they fall back to plain
// decorations instead:
//
//	ui.Code.Sprint("gitseal encrypt")   // `gitseal encrypt`
//	ui.Highlight.Sprint("src/*")        // 'src/*'
//	ui.Muted.Sprint("dry run")          // (dry run)
//
// FileLine, WarningLine and Summary render the per-file report printed
// after encrypt and decrypt.
package ui
