// Package utils provides small helpers shared by gitseal commands.
//
// # Repository Discovery
//
//   - FindRepoRoot: walks up directories to the nearest .git
//   - ResolveRepoRoot: applies the --repo flag or the working directory
//
// # Terminal Input
//
//   - ResolvePassword: flag, then GITSEAL_PASSWORD, then a hidden prompt
//   - ReadPassphrase: reads without echo via golang.org/x/term
//
// # Formatting
//
//   - FormatPaths: renders a bullet list of paths
package utils
