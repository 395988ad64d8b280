// Package output renders command results for the gamesvc CLI.
//
//   - formatter.go: Formatter interface, format names and Render
//   - table.go: aligned tables built from structs, slices and maps
//   - json.go: indented JSON
//   - yaml.go: YAML with the same field names as the JSON output
//   - spinner.go: progress animation while a call is pending
package output
